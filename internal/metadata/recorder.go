package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
Recorder captures structured inlining events.
It must not:
- perform I/O decisions
- affect control flow

Events are recorded synchronously in the order they are received by a single
rewrite invocation. No ordering across concurrently rewritten stylesheets is
guaranteed.
*/
type Recorder struct {
	log *zap.Logger
}

// NewRecorder returns a Recorder writing to log. A nil logger records nothing.
func NewRecorder(log *zap.Logger) Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return Recorder{
		log: log.Named("css-svg"),
	}
}

func (r *Recorder) RecordSkip(reference string, reason SkipReason, attrs []Attribute) {
	fields := append([]zap.Field{
		zap.String(string(AttrReference), reference),
		zap.String("reason", string(reason)),
	}, toFields(attrs)...)
	r.log.Info("reference left unmodified", fields...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	size int,
	duration time.Duration,
	attempts int,
) {
	fields := []zap.Field{
		zap.String(string(AttrURL), fetchUrl),
		zap.Int(string(AttrSize), size),
		zap.Duration("duration", duration),
		zap.Int("attempts", attempts),
	}
	if httpStatus != 0 {
		fields = append(fields, zap.Int(string(AttrHTTPStatus), httpStatus))
	}
	r.log.Debug("resource fetched", fields...)
}

func (r *Recorder) RecordInline(reference string, digest string, encodedSize int) {
	r.log.Info("reference inlined",
		zap.String(string(AttrReference), reference),
		zap.String(string(AttrDigest), digest),
		zap.Int("encoded_size", encodedSize),
	)
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := append([]zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Stringer("cause", cause),
		zap.String("error", errorString),
	}, toFields(attrs)...)
	r.log.Warn("operation failed", fields...)
}

func toFields(attrs []Attribute) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	return fields
}

type MetadataSink interface {
	RecordSkip(reference string, reason SkipReason, attrs []Attribute)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		size int,
		duration time.Duration,
		attempts int,
	)
	RecordInline(reference string, digest string, encodedSize int)
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Callers (or tests) can decide whether to inject Recorder or NoopSink

type NoopSink struct{}

func (n *NoopSink) RecordSkip(reference string, reason SkipReason, attrs []Attribute) {}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	size int,
	duration time.Duration,
	attempts int,
) {
}

func (n *NoopSink) RecordInline(reference string, digest string, encodedSize int) {}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}
