package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/failure"
	"github.com/rohmanhakim/css-svg/pkg/retry"
	"github.com/rohmanhakim/css-svg/pkg/urlutil"
)

/*
Responsibilities

- Perform HTTP GET requests for remote SVG references
- Apply headers and timeouts
- Enforce the weight ceiling before and while reading the body
- Classify responses

Fetch Semantics

- Only 2xx responses are returned
- Protocol-relative references are dialed with the default scheme
- Transport errors, 429 and 5xx are retryable when more than one attempt is configured
- Redirects follow the net/http client defaults

The fetcher never parses content; it only returns bytes and metadata.
*/

type HttpFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	param        HttpParam
}

func NewHttpFetcher(
	metadataSink metadata.MetadataSink,
	param HttpParam,
) HttpFetcher {
	return HttpFetcher{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: param.timeout,
		},
		param: param,
	}
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	handle resolver.Handle,
	maxWeight int64,
) (FetchResult, failure.ClassifiedError) {
	if !handle.Class().IsRemote() {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("%s is not a remote resource", handle.Raw()),
			Retryable: false,
			Cause:     ErrCauseUnsupportedClass,
		}
	}

	fetchUrl, urlErr := h.dialURL(handle.Location())
	if urlErr != nil {
		return FetchResult{}, urlErr
	}

	startTime := time.Now()
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchUrl, maxWeight)
	}
	result := retry.Retry(ctx, h.param.retryParam, fetchTask)
	if err := result.Err(); err != nil {
		// surface the last FetchError so callers see what actually failed
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return FetchResult{}, fetchErr
		}
		return FetchResult{}, err
	}

	fetched := result.Value()
	fetched.meta.attempts = result.Attempts()

	h.metadataSink.RecordFetch(
		fetchUrl.String(),
		fetched.Code(),
		fetched.SizeByte(),
		time.Since(startTime),
		result.Attempts(),
	)

	return fetched, nil
}

// dialURL upgrades protocol-relative references and validates the result.
func (h *HttpFetcher) dialURL(location string) (url.URL, failure.ClassifiedError) {
	raw := urlutil.WithScheme(location, h.param.defaultScheme)
	parsed, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}
	if parsed.Host == "" {
		return url.URL{}, &FetchError{
			Message:   fmt.Sprintf("no host in %q", location),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}
	// fragments are never sent to the server
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return *parsed, nil
}

func (h *HttpFetcher) performFetch(ctx context.Context, fetchUrl url.URL, maxWeight int64) (FetchResult, failure.ClassifiedError) {
	reqCtx, cancel := context.WithTimeout(ctx, h.param.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}

	for key, value := range requestHeaders(h.param.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return FetchResult{}, &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}

	case resp.StatusCode >= 400:
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequestClientError,
		}

	case resp.StatusCode >= 300:
		// the client follows redirects itself; landing here means it gave up
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}
	}

	if resp.ContentLength > maxWeight {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("resource too large: %d bytes (max %d)", resp.ContentLength, maxWeight),
			Retryable: false,
			Cause:     ErrCauseTooLarge,
		}
	}

	// Content-Length may be absent or wrong (chunked encoding)
	limitedReader := io.LimitReader(resp.Body, maxWeight+1) // +1 to detect overflow
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		fetchErr := classifyTransportError(ctx, err)
		if fetchErr.Cause == ErrCauseNetworkFailure {
			fetchErr.Cause = ErrCauseReadResponseBodyError
		}
		return FetchResult{}, fetchErr
	}
	if int64(len(body)) > maxWeight {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("resource too large: exceeded max %d bytes", maxWeight),
			Retryable: false,
			Cause:     ErrCauseTooLarge,
		}
	}

	return FetchResult{
		location: fetchUrl.String(),
		body:     body,
		meta: ResponseMeta{
			statusCode:  resp.StatusCode,
			contentType: resp.Header.Get("Content-Type"),
		},
	}, nil
}

// classifyTransportError separates caller cancellation, timeouts and other
// transport failures. Only the latter two are retryable.
func classifyTransportError(ctx context.Context, err error) *FetchError {
	if ctx.Err() != nil {
		return &FetchError{
			Message:   ctx.Err().Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}

	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     strings.Join([]string{"image/svg+xml", "image/*;q=0.8", "*/*;q=0.5"}, ","),
	}
}
