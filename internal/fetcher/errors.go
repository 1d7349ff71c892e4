package fetcher

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseNotFound              = "resource not found"
	ErrCauseNotRegularFile        = "not a regular file"
	ErrCauseReadError             = "failed to read resource"
	ErrCauseTooLarge              = "resource exceeds weight ceiling"
	ErrCauseInvalidURL            = "invalid url"
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseRedirectLimitExceeded = "reached redirect limit"
	ErrCauseRequestClientError    = "4xx"
	ErrCauseRequestTooMany        = "too many requests"
	ErrCauseRequest5xx            = "5xx"
	ErrCauseUnsupportedClass      = "unsupported resource class"
	ErrCauseCanceled              = "canceled"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// IsTooLarge reports whether err rejected a resource for its weight.
func IsTooLarge(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Cause == ErrCauseTooLarge
}

// MapToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func MapToMetadataCause(err error) metadata.ErrorCause {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return metadata.CauseUnknown
	}
	switch fetchErr.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseRequest5xx,
		ErrCauseRequestTooMany, ErrCauseReadResponseBodyError, ErrCauseRedirectLimitExceeded:
		return metadata.CauseNetworkFailure
	case ErrCauseNotFound, ErrCauseRequestClientError:
		return metadata.CauseNotFound
	case ErrCauseTooLarge:
		return metadata.CauseSizeLimit
	case ErrCauseNotRegularFile, ErrCauseReadError, ErrCauseInvalidURL:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
