package fetcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/css-svg/internal/fetcher"
	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/retry"
	"github.com/rohmanhakim/css-svg/pkg/timeutil"
)

const smallSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1 1"/>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newHttpFetcher(attempts int) fetcher.HttpFetcher {
	return newHttpFetcherWithScheme(attempts, "https")
}

func newHttpFetcherWithScheme(attempts int, scheme string) fetcher.HttpFetcher {
	param := fetcher.NewHttpParam(
		2*time.Second,
		"css-svg-test/1.0",
		scheme,
		retry.NewRetryParam(0, 1, attempts, timeutil.NewBackoffParam(time.Millisecond, 1, time.Millisecond)),
	)
	return fetcher.NewHttpFetcher(&metadata.NoopSink{}, param)
}

func remoteHandle(t *testing.T, raw string) resolver.Handle {
	t.Helper()
	handle, verdict := resolver.Resolve(raw, "")
	require.Equal(t, resolver.VerdictEligible, verdict)
	return handle
}
