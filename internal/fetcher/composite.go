package fetcher

import (
	"context"
	"fmt"

	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

// CompositeFetcher routes a handle to the local or remote fetcher by class.
type CompositeFetcher struct {
	local  Fetcher
	remote Fetcher
}

func NewCompositeFetcher(local Fetcher, remote Fetcher) CompositeFetcher {
	return CompositeFetcher{
		local:  local,
		remote: remote,
	}
}

func (c *CompositeFetcher) Fetch(
	ctx context.Context,
	handle resolver.Handle,
	maxWeight int64,
) (FetchResult, failure.ClassifiedError) {
	switch {
	case handle.Class().IsLocal():
		return c.local.Fetch(ctx, handle, maxWeight)
	case handle.Class().IsRemote():
		return c.remote.Fetch(ctx, handle, maxWeight)
	default:
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("cannot fetch %s reference %q", handle.Class(), handle.Raw()),
			Retryable: false,
			Cause:     ErrCauseUnsupportedClass,
		}
	}
}
