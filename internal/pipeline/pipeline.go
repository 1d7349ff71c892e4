package pipeline

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/rohmanhakim/css-svg/internal/config"
	"github.com/rohmanhakim/css-svg/internal/fetcher"
	"github.com/rohmanhakim/css-svg/internal/inliner"
	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/pkg/retry"
	"github.com/rohmanhakim/css-svg/pkg/timeutil"
)

// Item is one file flowing through a build pipeline. Exactly one of
// Contents and Stream is set, or neither for a placeholder.
type Item struct {
	Path     string
	Contents []byte
	Stream   io.Reader
}

// IsNull reports a placeholder item without contents.
func (i Item) IsNull() bool {
	return i.Contents == nil && i.Stream == nil
}

// IsStream reports an item whose contents are streamed, not buffered.
func (i Item) IsStream() bool {
	return i.Stream != nil
}

type Transformer struct {
	inliner inliner.Inliner
	log     *zap.Logger
}

type Option func(*settings)

type settings struct {
	log *zap.Logger
}

// WithLogger routes verbose notices to log instead of the default console logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// New layers opts onto the defaults and builds a transform unit. opts is
// taken by value, so the caller's copy never sees the defaults.
func New(opts config.Options, options ...Option) (*Transformer, error) {
	cfg, err := config.FromOptions(opts)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, options...), nil
}

// NewFromConfig builds a transform unit from a complete configuration.
func NewFromConfig(cfg config.Config, options ...Option) *Transformer {
	s := settings{}
	for _, opt := range options {
		opt(&s)
	}
	// notices are dropped unless verbose, whatever logger was supplied
	switch {
	case !cfg.Verbose():
		s.log = zap.NewNop()
	case s.log == nil:
		s.log = metadata.NewLogger(true)
	}

	recorder := metadata.NewRecorder(s.log)
	local := fetcher.NewLocalFetcher(&recorder)
	remote := fetcher.NewHttpFetcher(&recorder, fetcher.NewHttpParam(
		cfg.Timeout(),
		cfg.UserAgent(),
		cfg.DefaultScheme(),
		retry.NewRetryParam(
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		),
	))
	composite := fetcher.NewCompositeFetcher(&local, &remote)

	return &Transformer{
		inliner: inliner.NewInliner(cfg, &composite, &recorder),
		log:     s.log,
	}
}

// Transform rewrites a buffered item. Placeholders pass through untouched and
// streamed items are rejected with a *PluginError.
func (t *Transformer) Transform(ctx context.Context, item Item) (Item, error) {
	if item.IsNull() {
		return item, nil
	}
	if item.IsStream() {
		return Item{}, newStreamNotSupported()
	}

	result, err := t.inliner.Rewrite(ctx, item.Contents)
	if err != nil {
		return Item{}, err
	}
	t.log.Debug("stylesheet rewritten",
		zap.String("path", item.Path),
		zap.Int("inlined", len(result.Inlined())),
		zap.Int("skipped", len(result.Skipped())),
	)

	out := item
	out.Contents = result.Content()
	return out, nil
}

// Rewrite runs the inliner over contents and returns the full report.
func (t *Transformer) Rewrite(ctx context.Context, contents []byte) (inliner.Result, error) {
	return t.inliner.Rewrite(ctx, contents)
}
