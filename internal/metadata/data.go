package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used to decide whether an occurrence is inlined.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability
    (timeouts, DNS failures, connection resets, 5xx responses).

# CauseNotFound

  - The referenced resource does not exist
    (missing local file, 404 response).

# CauseSizeLimit

  - The resource exceeds the configured weight ceiling.

# CauseContentInvalid

  - Content was retrieved but could not be processed
    (unknown declared charset, unreadable file).

# CauseStorageFailure

  - Failure while writing a rewritten stylesheet.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseNotFound
	CauseSizeLimit
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseNotFound:
		return "not_found"
	case CauseSizeLimit:
		return "size_limit"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// SkipReason names why an occurrence was left unmodified.
type SkipReason string

const (
	SkipDirective      SkipReason = "skip_directive"
	SkipDataURI        SkipReason = "data_uri"
	SkipFragmentOnly   SkipReason = "fragment_only"
	SkipNotSVG         SkipReason = "not_svg"
	SkipOversized      SkipReason = "oversized"
	SkipUnreachable    SkipReason = "unreachable"
	SkipInvalidContent SkipReason = "invalid_content"
	SkipCached         SkipReason = "cached_non_convertible"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrPath       AttributeKey = "path"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrReference  AttributeKey = "reference"
	AttrWritePath  AttributeKey = "write_path"
	AttrSize       AttributeKey = "size"
	AttrDigest     AttributeKey = "digest"
	AttrCause      AttributeKey = "cause"
	AttrError      AttributeKey = "error"
)
