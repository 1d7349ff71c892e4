package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// ComputeJitter returns a random duration in [0, max).
// Non-positive max yields zero.
func ComputeJitter(max time.Duration, rng *rand.Rand) time.Duration {
	if max <= 0 || rng == nil {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the wait before retry number backoffCount
// (1-based): initial * multiplier^(backoffCount-1), capped at the max duration,
// plus up to jitter of random variance.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), float64(backoffCount-1))
	if max := float64(param.MaxDuration()); max > 0 && delay > max {
		delay = max
	}

	return time.Duration(delay) + ComputeJitter(jitter, rng)
}
