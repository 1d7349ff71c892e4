package inliner_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/css-svg/internal/config"
	"github.com/rohmanhakim/css-svg/internal/fetcher"
	"github.com/rohmanhakim/css-svg/internal/inliner"
	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/failure"
	"github.com/rohmanhakim/css-svg/pkg/retry"
	"github.com/rohmanhakim/css-svg/pkg/timeutil"
)

const fixturePath = "testdata/image/very-very-small.svg"

const encodedFixture = `url("data:image/svg+xml;charset=utf8,%3Csvg id='Layer_1' xmlns='http://www.w3.org/2000/svg' viewBox='0 0 72 72'%3E%3Cstyle%3E.st0%7Bfill:%23333%7D%3C/style%3E%3Cpath class='st0' d='M63 45v18H9V45H0v27h72V45z'/%3E%3Cpath class='st0' d='M54 27h-9V0H27v27h-9l18 27z'/%3E%3C/svg%3E")`

const ruleTail = ` no-repeat 4px 5px;padding-left:12px;font-size:12px;color:#888;text-decoration:underline}`

func rule(value string) string {
	return ".button_alert{background:" + value + ruleTail
}

// countingFetcher counts fetches that reach the real fetcher.
type countingFetcher struct {
	next  fetcher.Fetcher
	calls atomic.Int32
}

func (c *countingFetcher) Fetch(ctx context.Context, handle resolver.Handle, maxWeight int64) (fetcher.FetchResult, failure.ClassifiedError) {
	c.calls.Add(1)
	return c.next.Fetch(ctx, handle, maxWeight)
}

func newInliner(t *testing.T, opts config.Options) (inliner.Inliner, *countingFetcher) {
	t.Helper()
	cfg, err := config.FromOptions(opts)
	require.NoError(t, err)

	sink := &metadata.NoopSink{}
	local := fetcher.NewLocalFetcher(sink)
	remote := fetcher.NewHttpFetcher(sink, fetcher.NewHttpParam(
		2*time.Second,
		"css-svg-test/1.0",
		"http",
		retry.NewRetryParam(0, 1, 1, timeutil.NewBackoffParam(time.Millisecond, 1, time.Millisecond)),
	))
	composite := fetcher.NewCompositeFetcher(&local, &remote)
	counter := &countingFetcher{next: &composite}

	return inliner.NewInliner(cfg, counter, sink), counter
}

func rewrite(t *testing.T, in inliner.Inliner, css string) string {
	t.Helper()
	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	return string(result.Content())
}

func fixtureServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	svg, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, ".svg") || strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestRewrite_UnquotedURL(t *testing.T) {
	in, _ := newInliner(t, config.Options{Verbose: true})
	got := rewrite(t, in, rule("url("+fixturePath+")"))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_SingleQuotedURL(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	got := rewrite(t, in, rule("url('"+fixturePath+"')"))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_DoubleQuotedURL(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	got := rewrite(t, in, rule(`url("`+fixturePath+`")`))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_QueryAndFragmentSuffix(t *testing.T) {
	in, _ := newInliner(t, config.Options{})

	got := rewrite(t, in, rule("url('"+fixturePath+"?awesomeQuestionmark')"))
	assert.Equal(t, rule(encodedFixture), got)

	got = rewrite(t, in, rule("url('"+fixturePath+"#awesomeHashtag')"))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_OversizedLeftUnchanged(t *testing.T) {
	in, _ := newInliner(t, config.Options{MaxWeightResource: 10})
	css := rule("url(" + fixturePath + ")")

	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	assert.Equal(t, css, string(result.Content()))
	require.Len(t, result.Skipped(), 1)
	assert.Equal(t, metadata.SkipOversized, result.Skipped()[0].Reason)
	assert.False(t, result.Changed())
}

func TestRewrite_DataURILeftUnchanged(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	css := rule(`url('data:image/svg+xml;charset=utf8,%3Csvg id="Layer_1" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 72 72"%3E%3C/svg%3E')`)

	assert.Equal(t, css, rewrite(t, in, css))
	assert.Equal(t, int32(0), counter.calls.Load())
}

func TestRewrite_FragmentOnlyLeftUnchanged(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	css := `.button_alert{mask-image: url("#stark-svg-mask");}`

	assert.Equal(t, css, rewrite(t, in, css))
	assert.Equal(t, int32(0), counter.calls.Load())
}

func TestRewrite_MissingLocalLeftUnchanged(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	css := rule("url(wrong/path/image.png)")
	assert.Equal(t, css, rewrite(t, in, css))

	css = rule("url(wrong/path/image.svg)")
	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	assert.Equal(t, css, string(result.Content()))
	require.Len(t, result.Skipped(), 1)
	assert.Equal(t, metadata.SkipUnreachable, result.Skipped()[0].Reason)
}

func TestRewrite_RemoteNotFoundLeftUnchanged(t *testing.T) {
	server, hits := fixtureServer(t)
	in, _ := newInliner(t, config.Options{})

	css := rule("url(" + server.URL + "/favicon1356.ico)")
	assert.Equal(t, css, rewrite(t, in, css))
	assert.Equal(t, int32(0), hits.Load())

	css = rule("url(" + server.URL + "/missing.svg)")
	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	assert.Equal(t, css, string(result.Content()))
	assert.Equal(t, int32(1), hits.Load())
	require.Len(t, result.Skipped(), 1)
	assert.Equal(t, metadata.SkipUnreachable, result.Skipped()[0].Reason)
}

func TestRewrite_MalformedRemoteLeftUnchanged(t *testing.T) {
	in, _ := newInliner(t, config.Options{})

	css := rule("url(http:////www.google.com/favicon.ico)")
	assert.Equal(t, css, rewrite(t, in, css))

	css = rule("url(http:////www.google.com/favicon.svg)")
	assert.Equal(t, css, rewrite(t, in, css))
}

func TestRewrite_BaseDirectoryRelative(t *testing.T) {
	in, _ := newInliner(t, config.Options{BaseDirectory: "testdata/image"})
	got := rewrite(t, in, rule("url(very-very-small.svg)"))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_BaseDirectoryAbsolute(t *testing.T) {
	in, _ := newInliner(t, config.Options{BaseDirectory: "testdata/image"})
	got := rewrite(t, in, rule("url(/very-very-small.svg)"))
	assert.Equal(t, rule(encodedFixture), got)
}

func TestRewrite_SkipDirective(t *testing.T) {
	in, counter := newInliner(t, config.Options{})

	css := `.button_alert{background:url(testdata/image/very-very-small.png)/*base64:skip*/}`
	assert.Equal(t, css, rewrite(t, in, css))

	css = `.button_alert{background:url(` + fixturePath + `)/*base64:skip*/}`
	assert.Equal(t, css, rewrite(t, in, css))
	assert.Equal(t, int32(0), counter.calls.Load())
}

func TestRewrite_SkipDirectiveDoesNotPoisonCache(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	css := `a{b:url(` + fixturePath + `)/*base64:skip*/}c{d:url(` + fixturePath + `)}`

	got := rewrite(t, in, css)
	assert.Equal(t, `a{b:url(`+fixturePath+`)/*base64:skip*/}c{d:`+encodedFixture+`}`, got)
}

func TestRewrite_DuplicateUsesCache(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	first := ".button_alert{background:url(" + fixturePath + ")" + strings.TrimSuffix(ruleTail, "}")
	css := first + rule("url("+fixturePath+")")

	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)

	want := ".button_alert{background:" + encodedFixture + strings.TrimSuffix(ruleTail, "}") + rule(encodedFixture)
	assert.Equal(t, want, string(result.Content()))
	assert.Equal(t, int32(1), counter.calls.Load())

	require.Len(t, result.Inlined(), 2)
	assert.False(t, result.Inlined()[0].Cached)
	assert.True(t, result.Inlined()[1].Cached)
	assert.Equal(t, result.Inlined()[0].Digest, result.Inlined()[1].Digest)
	assert.NotEmpty(t, result.Inlined()[0].Digest)
}

func TestRewrite_FailedFetchCachedAsNonConvertible(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	css := `a{b:url(missing.svg)}c{d:url(missing.svg)}`

	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	assert.Equal(t, css, string(result.Content()))
	assert.Equal(t, int32(1), counter.calls.Load())

	require.Len(t, result.Skipped(), 2)
	assert.Equal(t, metadata.SkipUnreachable, result.Skipped()[0].Reason)
	assert.Equal(t, metadata.SkipCached, result.Skipped()[1].Reason)
}

func TestRewrite_CacheScopedToInvocation(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	css := rule("url(" + fixturePath + ")")

	rewrite(t, in, css)
	rewrite(t, in, css)
	assert.Equal(t, int32(2), counter.calls.Load())
}

func TestRewrite_Remote(t *testing.T) {
	server, _ := fixtureServer(t)
	host := strings.TrimPrefix(server.URL, "http://")

	tests := []struct {
		name string
		ref  string
	}{
		{"http", server.URL + "/test/fixtures/image/very-very-small.svg"},
		{"protocol relative", "//" + host + "/test/fixtures/image/very-very-small.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newInliner(t, config.Options{})
			got := rewrite(t, in, rule("url("+tt.ref+")"))
			assert.Equal(t, rule(encodedFixture), got)
		})
	}
}

func TestRewrite_RemoteDuplicateFetchedOnce(t *testing.T) {
	server, hits := fixtureServer(t)
	in, _ := newInliner(t, config.Options{})
	ref := server.URL + "/a.svg"

	got := rewrite(t, in, fmt.Sprintf("a{b:url(%s)}c{d:url('%s')}e{f:url(%s)}", ref, ref, ref))
	assert.Equal(t, fmt.Sprintf("a{b:%s}c{d:%s}e{f:%s}", encodedFixture, encodedFixture, encodedFixture), got)
	// url(x) and url('x') are distinct cache keys
	assert.Equal(t, int32(2), hits.Load())
}

func TestRewrite_OutputIsIdempotent(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	once := rewrite(t, in, rule("url("+fixturePath+")"))
	calls := counter.calls.Load()

	twice := rewrite(t, in, once)
	assert.Equal(t, once, twice)
	assert.Equal(t, calls, counter.calls.Load())
}

func TestRewrite_PreservesSurroundingBytes(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	css := "/* header */\r\n@media screen {\n\t.a { background : url(" + fixturePath + ") ; }\n}\n\x00tail"

	got := rewrite(t, in, css)
	want := "/* header */\r\n@media screen {\n\t.a { background : " + encodedFixture + " ; }\n}\n\x00tail"
	assert.Equal(t, want, got)
}

func TestRewrite_InputNotModified(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	input := []byte(rule("url(" + fixturePath + ")"))
	snapshot := string(input)

	_, err := in.Rewrite(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, snapshot, string(input))
}

func TestRewrite_EmptyStylesheet(t *testing.T) {
	in, _ := newInliner(t, config.Options{})
	result, err := in.Rewrite(context.Background(), []byte{})
	require.NoError(t, err)
	assert.Empty(t, result.Content())
}

func TestRewrite_CanceledContext(t *testing.T) {
	in, counter := newInliner(t, config.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := in.Rewrite(ctx, []byte(rule("url("+fixturePath+")")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result.Content())
	assert.Equal(t, int32(0), counter.calls.Load())
}

func TestRewrite_NonUTF8SVGTranscoded(t *testing.T) {
	dir := t.TempDir()
	svg := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><text>caf\xe9</text></svg>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latin1.svg"), []byte(svg), 0644))

	in, _ := newInliner(t, config.Options{BaseDirectory: dir})
	got := rewrite(t, in, "a{b:url(latin1.svg)}")
	assert.Equal(t, `a{b:url("data:image/svg+xml;charset=utf8,%3C?xml version='1.0' encoding='UTF-8'?%3E%3Csvg%3E%3Ctext%3Ecafé%3C/text%3E%3C/svg%3E")}`, got)
}

func TestRewrite_UnknownCharsetLeftUnchanged(t *testing.T) {
	dir := t.TempDir()
	svg := `<?xml version="1.0" encoding="x-made-up"?><svg/>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.svg"), []byte(svg), 0644))

	in, _ := newInliner(t, config.Options{BaseDirectory: dir})
	css := "a{b:url(odd.svg)}"
	result, err := in.Rewrite(context.Background(), []byte(css))
	require.NoError(t, err)
	assert.Equal(t, css, string(result.Content()))
	require.Len(t, result.Skipped(), 1)
	assert.Equal(t, metadata.SkipInvalidContent, result.Skipped()[0].Reason)
}
