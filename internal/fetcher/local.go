package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

// LocalFetcher reads local-absolute and local-relative resources.
// The file is stat'ed first so oversized resources are never read.
type LocalFetcher struct {
	metadataSink metadata.MetadataSink
}

func NewLocalFetcher(metadataSink metadata.MetadataSink) LocalFetcher {
	return LocalFetcher{
		metadataSink: metadataSink,
	}
}

func (l *LocalFetcher) Fetch(
	ctx context.Context,
	handle resolver.Handle,
	maxWeight int64,
) (FetchResult, failure.ClassifiedError) {
	if !handle.Class().IsLocal() {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("%s is not a local resource", handle.Raw()),
			Retryable: false,
			Cause:     ErrCauseUnsupportedClass,
		}
	}
	if err := ctx.Err(); err != nil {
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	}

	startTime := time.Now()
	path := handle.AbsPath()

	info, err := os.Stat(path)
	if err != nil {
		cause := FetchErrorCause(ErrCauseReadError)
		if errors.Is(err, fs.ErrNotExist) {
			cause = ErrCauseNotFound
		}
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     cause,
		}
	}
	if !info.Mode().IsRegular() {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("%s is not a regular file", path),
			Retryable: false,
			Cause:     ErrCauseNotRegularFile,
		}
	}
	if info.Size() > maxWeight {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("resource too large: %d bytes (max %d)", info.Size(), maxWeight),
			Retryable: false,
			Cause:     ErrCauseTooLarge,
		}
	}

	body, readErr := readLimited(path, maxWeight)
	if readErr != nil {
		return FetchResult{}, readErr
	}

	l.metadataSink.RecordFetch(path, 0, len(body), time.Since(startTime), 1)

	return FetchResult{
		location: path,
		body:     body,
		meta: ResponseMeta{
			attempts: 1,
		},
	}, nil
}

// readLimited guards against the file growing between stat and read.
func readLimited(path string, maxWeight int64) ([]byte, failure.ClassifiedError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadError,
		}
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxWeight+1))
	if err != nil {
		return nil, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadError,
		}
	}
	if int64(len(body)) > maxWeight {
		return nil, &FetchError{
			Message:   fmt.Sprintf("resource too large: exceeded max %d bytes", maxWeight),
			Retryable: false,
			Cause:     ErrCauseTooLarge,
		}
	}
	return body, nil
}
