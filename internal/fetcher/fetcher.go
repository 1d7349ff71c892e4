package fetcher

import (
	"context"

	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

// Fetcher retrieves the bytes behind a resolved handle. Resources larger than
// maxWeight bytes are rejected with ErrCauseTooLarge; a non-positive maxWeight
// rejects every non-empty resource.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		handle resolver.Handle,
		maxWeight int64,
	) (FetchResult, failure.ClassifiedError)
}
