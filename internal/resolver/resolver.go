package resolver

import (
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/css-svg/pkg/fileutil"
	"github.com/rohmanhakim/css-svg/pkg/urlutil"
)

/*
Resolver responsibilities:
- Classify a raw reference into exactly one resource class
- Produce a locatable handle for eligible references
- Reject non-SVG, already inlined and fragment-only references

Resolution never touches the filesystem or the network; whether the resource
actually exists is decided by the fetcher.
*/

// Class is the resource class of a reference.
type Class int

const (
	ClassUnknown Class = iota
	ClassLocalAbsolute
	ClassLocalRelative
	ClassRemoteHTTP
	ClassRemoteProtocolRelative
	ClassDataURI
	ClassFragmentOnly
)

func (c Class) String() string {
	switch c {
	case ClassLocalAbsolute:
		return "local-absolute"
	case ClassLocalRelative:
		return "local-relative"
	case ClassRemoteHTTP:
		return "remote-http"
	case ClassRemoteProtocolRelative:
		return "remote-protocol-relative"
	case ClassDataURI:
		return "data-uri"
	case ClassFragmentOnly:
		return "fragment-only"
	default:
		return "unknown"
	}
}

func (c Class) IsLocal() bool {
	return c == ClassLocalAbsolute || c == ClassLocalRelative
}

func (c Class) IsRemote() bool {
	return c == ClassRemoteHTTP || c == ClassRemoteProtocolRelative
}

// Verdict tells whether a resolved reference proceeds to fetch.
type Verdict int

const (
	VerdictEligible Verdict = iota
	VerdictDataURI
	VerdictFragmentOnly
	VerdictNotSVG
)

func (v Verdict) String() string {
	switch v {
	case VerdictEligible:
		return "eligible"
	case VerdictDataURI:
		return "data_uri"
	case VerdictFragmentOnly:
		return "fragment_only"
	case VerdictNotSVG:
		return "not_svg"
	default:
		return "unknown"
	}
}

// Handle is the resolved identity of a reference.
type Handle struct {
	raw      string
	class    Class
	location string
	absPath  string
}

func NewHandle(raw string, class Class, location string, absPath string) Handle {
	return Handle{
		raw:      raw,
		class:    class,
		location: location,
		absPath:  absPath,
	}
}

// Raw returns the reference as written, unquoted.
func (h Handle) Raw() string {
	return h.raw
}

func (h Handle) Class() Class {
	return h.class
}

// Location is the resolved filesystem path for local classes and the URL as
// written (query kept, fragment kept) for remote classes.
func (h Handle) Location() string {
	return h.location
}

// AbsPath is the absolute filesystem path for local classes, empty otherwise.
func (h Handle) AbsPath() string {
	return h.absPath
}

const svgExtension = "svg"

// Resolve classifies raw against baseDir. An empty baseDir resolves local
// references against the working directory.
func Resolve(raw string, baseDir string) (Handle, Verdict) {
	if urlutil.HasDataScheme(raw) {
		return NewHandle(raw, ClassDataURI, raw, ""), VerdictDataURI
	}
	if strings.HasPrefix(raw, "#") {
		return NewHandle(raw, ClassFragmentOnly, raw, ""), VerdictFragmentOnly
	}

	resource, _ := urlutil.SplitSuffix(raw)

	if urlutil.IsRemote(raw) {
		class := ClassRemoteHTTP
		if urlutil.IsProtocolRelative(raw) {
			class = ClassRemoteProtocolRelative
		}
		handle := NewHandle(raw, class, raw, "")
		if !isSVG(resource) {
			return handle, VerdictNotSVG
		}
		return handle, VerdictEligible
	}

	class := ClassLocalRelative
	name := resource
	if strings.HasPrefix(resource, "/") {
		class = ClassLocalAbsolute
		name = strings.TrimPrefix(resource, "/")
	}

	location := filepath.Join(baseDir, filepath.FromSlash(name))
	absPath, err := filepath.Abs(location)
	if err != nil {
		absPath = location
	}
	handle := NewHandle(raw, class, location, absPath)
	if !isSVG(resource) {
		return handle, VerdictNotSVG
	}
	return handle, VerdictEligible
}

// isSVG matches the extension exactly as authored; ".SVG" is not eligible.
func isSVG(resource string) bool {
	return fileutil.GetFileExtension(resource) == svgExtension
}
