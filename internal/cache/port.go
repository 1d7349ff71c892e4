package cache

// Cache is the conversion memo consulted by the rewriter.
// Keys are raw references exactly as written in the stylesheet.
// Implementations must be scoped to a single rewrite invocation.
type Cache interface {
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
}

// Entry is either a final replacement string or the non-convertible sentinel.
type Entry struct {
	replacement string
	convertible bool
}

// Converted builds an entry holding the replacement for a reference.
func Converted(replacement string) Entry {
	return Entry{
		replacement: replacement,
		convertible: true,
	}
}

// NonConvertible is the sentinel meaning "verified non-convertible, leave as-is".
func NonConvertible() Entry {
	return Entry{}
}

func (e Entry) Replacement() string {
	return e.replacement
}

func (e Entry) IsConvertible() bool {
	return e.convertible
}
