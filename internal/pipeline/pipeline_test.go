package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rohmanhakim/css-svg/internal/config"
	"github.com/rohmanhakim/css-svg/internal/pipeline"
	"github.com/rohmanhakim/css-svg/pkg/failure"
)

const encodedFixture = `url("data:image/svg+xml;charset=utf8,%3Csvg id='Layer_1' xmlns='http://www.w3.org/2000/svg' viewBox='0 0 72 72'%3E%3Cstyle%3E.st0%7Bfill:%23333%7D%3C/style%3E%3Cpath class='st0' d='M63 45v18H9V45H0v27h72V45z'/%3E%3Cpath class='st0' d='M54 27h-9V0H27v27h-9l18 27z'/%3E%3C/svg%3E")`

func TestNew_DoesNotModifyOptions(t *testing.T) {
	opts := config.Options{BaseDirectory: "foo"}
	_, err := pipeline.New(opts)
	require.NoError(t, err)

	assert.Equal(t, config.Options{BaseDirectory: "foo"}, opts)
	assert.Zero(t, opts.MaxWeightResource)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := pipeline.New(config.Options{MaxWeightResource: -1})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestTransform_Buffer(t *testing.T) {
	tr, err := pipeline.New(config.Options{})
	require.NoError(t, err)

	item := pipeline.Item{
		Path:     "style.css",
		Contents: []byte(".button_alert{background:url(testdata/very-very-small.svg) no-repeat 4px 5px}"),
	}
	out, err := tr.Transform(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, "style.css", out.Path)
	assert.False(t, out.IsStream())
	assert.Equal(t, ".button_alert{background:"+encodedFixture+" no-repeat 4px 5px}", string(out.Contents))
}

func TestTransform_NullPassthrough(t *testing.T) {
	tr, err := pipeline.New(config.Options{})
	require.NoError(t, err)

	item := pipeline.Item{Path: "empty.css"}
	out, err := tr.Transform(context.Background(), item)
	require.NoError(t, err)

	assert.True(t, out.IsNull())
	assert.Nil(t, out.Contents)
	assert.Equal(t, item, out)
}

func TestTransform_StreamRejected(t *testing.T) {
	tr, err := pipeline.New(config.Options{})
	require.NoError(t, err)

	item := pipeline.Item{Stream: strings.NewReader("stream with those contents")}
	_, err = tr.Transform(context.Background(), item)
	require.Error(t, err)

	assert.Equal(t, "Stream not supported!", err.Error())

	var pluginErr *pipeline.PluginError
	require.True(t, errors.As(err, &pluginErr))
	assert.Equal(t, pipeline.PluginName, pluginErr.Plugin)
	assert.Equal(t, "css-svg", pluginErr.Plugin)
	assert.Equal(t, failure.SeverityFatal, pluginErr.Severity())
}

func TestTransform_VerboseNotices(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tr, err := pipeline.New(config.Options{Verbose: true}, pipeline.WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = tr.Transform(context.Background(), pipeline.Item{
		Contents: []byte(`a{b:url(testdata/very-very-small.svg)}c{d:url(icon.png)}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("reference inlined").Len())
	assert.Equal(t, 1, logs.FilterMessage("reference left unmodified").Len())
}

func TestTransform_QuietDropsNotices(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr, err := pipeline.New(config.Options{}, pipeline.WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = tr.Transform(context.Background(), pipeline.Item{
		Contents: []byte(`a{b:url(icon.png)}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, logs.Len())
}

func TestTransform_CanceledContext(t *testing.T) {
	tr, err := pipeline.New(config.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = tr.Transform(ctx, pipeline.Item{Contents: []byte(`a{b:url(x.svg)}`)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRewrite_Report(t *testing.T) {
	tr, err := pipeline.New(config.Options{})
	require.NoError(t, err)

	result, err := tr.Rewrite(context.Background(), []byte(`a{b:url(testdata/very-very-small.svg)}`))
	require.NoError(t, err)
	require.Len(t, result.Inlined(), 1)
	assert.Equal(t, "testdata/very-very-small.svg", result.Inlined()[0].Reference)
	assert.Len(t, result.Inlined()[0].Digest, 12)
}
