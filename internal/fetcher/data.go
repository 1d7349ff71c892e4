package fetcher

import (
	"time"

	"github.com/rohmanhakim/css-svg/pkg/retry"
	"github.com/rohmanhakim/css-svg/pkg/timeutil"
)

// HTTP boundary

// HttpParam carries the remote fetch settings derived from configuration.
type HttpParam struct {
	timeout       time.Duration
	userAgent     string
	defaultScheme string
	retryParam    retry.RetryParam
}

func NewHttpParam(
	timeout time.Duration,
	userAgent string,
	defaultScheme string,
	retryParam retry.RetryParam,
) HttpParam {
	return HttpParam{
		timeout:       timeout,
		userAgent:     userAgent,
		defaultScheme: defaultScheme,
		retryParam:    retryParam,
	}
}

// DefaultHttpParam is a single-attempt fetch over https with a 10s timeout.
func DefaultHttpParam(userAgent string) HttpParam {
	return NewHttpParam(
		10*time.Second,
		userAgent,
		"https",
		retry.NewRetryParam(0, 0, 1, timeutil.NewBackoffParam(0, 1, 0)),
	)
}

type FetchResult struct {
	location string
	body     []byte
	meta     ResponseMeta
}

// Location is the filesystem path or dialed URL the bytes were read from.
func (f *FetchResult) Location() string {
	return f.location
}

func (f *FetchResult) Body() []byte {
	return f.body
}

// Code is the HTTP status code, or 0 for local reads.
func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() int {
	return len(f.body)
}

func (f *FetchResult) Attempts() int {
	return f.meta.attempts
}

type ResponseMeta struct {
	statusCode  int
	contentType string
	attempts    int
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(location string, body []byte, statusCode int) FetchResult {
	return FetchResult{
		location: location,
		body:     body,
		meta: ResponseMeta{
			statusCode: statusCode,
			attempts:   1,
		},
	}
}
