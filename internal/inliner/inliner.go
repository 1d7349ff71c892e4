package inliner

import (
	"bytes"
	"context"
	"strings"

	"github.com/rohmanhakim/css-svg/internal/cache"
	"github.com/rohmanhakim/css-svg/internal/config"
	"github.com/rohmanhakim/css-svg/internal/encoder"
	"github.com/rohmanhakim/css-svg/internal/fetcher"
	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/resolver"
	"github.com/rohmanhakim/css-svg/pkg/hashutil"
	"github.com/rohmanhakim/css-svg/pkg/urlutil"
)

/*
Inliner responsibilities

- Walk every url(...) occurrence of one stylesheet, in order
- Consult the per-invocation conversion cache before resolving
- Resolve, fetch and encode first-seen references
- Splice replacements into the output, copying every other byte

Rewrite Semantics

- Skip directives, data URIs and fragment-only references never touch the cache
- Any resolve, fetch or encode failure leaves the occurrence as written
- A failure is cached as non-convertible so it is not retried in the same pass
- Cancelling ctx aborts the pass; no partial output is returned
*/

type Inliner struct {
	cfg          config.Config
	fetcher      fetcher.Fetcher
	metadataSink metadata.MetadataSink
	newCache     func() cache.Cache
}

func NewInliner(
	cfg config.Config,
	f fetcher.Fetcher,
	metadataSink metadata.MetadataSink,
) Inliner {
	return Inliner{
		cfg:          cfg,
		fetcher:      f,
		metadataSink: metadataSink,
		newCache: func() cache.Cache {
			return cache.NewMemoryCache()
		},
	}
}

// Rewrite replaces every eligible url(...) occurrence of stylesheet.
// stylesheet is never modified.
func (in *Inliner) Rewrite(ctx context.Context, stylesheet []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	occurrences := Scan(stylesheet)
	if len(occurrences) == 0 {
		return Result{content: stylesheet}, nil
	}

	memo := in.newCache()
	state := &rewriteState{memo: memo}

	var out bytes.Buffer
	out.Grow(len(stylesheet))
	last := 0
	for _, occ := range occurrences {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		replacement, ok := in.convert(ctx, occ, state)
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		out.Write(stylesheet[last:occ.Start()])
		if ok {
			out.WriteString(replacement)
		} else {
			out.Write(stylesheet[occ.Start():occ.End()])
		}
		last = occ.End()
	}
	out.Write(stylesheet[last:])

	return Result{
		content: out.Bytes(),
		inlined: state.inlined,
		skipped: state.skipped,
	}, nil
}

type rewriteState struct {
	memo    cache.Cache
	inlined []Inlined
	skipped []Skipped
}

func (in *Inliner) convert(ctx context.Context, occ Occurrence, state *rewriteState) (string, bool) {
	raw := occ.Raw()

	// structural skips, independent of the cache
	switch {
	case occ.HasSkipDirective():
		in.skip(state, raw, metadata.SkipDirective, nil)
		return "", false
	case urlutil.HasDataScheme(raw):
		in.skip(state, raw, metadata.SkipDataURI, nil)
		return "", false
	case strings.HasPrefix(raw, "#"):
		in.skip(state, raw, metadata.SkipFragmentOnly, nil)
		return "", false
	}

	if entry, ok := state.memo.Get(occ.Key()); ok {
		if !entry.IsConvertible() {
			in.skip(state, raw, metadata.SkipCached, nil)
			return "", false
		}
		state.inlined = append(state.inlined, in.cachedRecord(state, raw))
		return entry.Replacement(), true
	}

	handle, verdict := resolver.Resolve(raw, in.cfg.BaseDirectory())
	if verdict != resolver.VerdictEligible {
		state.memo.Put(occ.Key(), cache.NonConvertible())
		in.skip(state, raw, verdictReason(verdict), []metadata.Attribute{
			metadata.NewAttr(metadata.AttrPath, handle.Location()),
		})
		return "", false
	}

	fetched, fetchErr := in.fetcher.Fetch(ctx, handle, in.cfg.MaxWeightResource())
	if fetchErr != nil {
		if ctx.Err() != nil {
			// aborted, not verified non-convertible
			return "", false
		}
		reason := metadata.SkipUnreachable
		if fetcher.IsTooLarge(fetchErr) {
			reason = metadata.SkipOversized
		}
		state.memo.Put(occ.Key(), cache.NonConvertible())
		in.skip(state, raw, reason, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrPath, handle.Location()),
			metadata.NewAttr(metadata.AttrCause, fetcher.MapToMetadataCause(fetchErr).String()),
			metadata.NewAttr(metadata.AttrError, fetchErr.Error()),
		})
		return "", false
	}

	svg, err := encoder.Normalize(fetched.Body())
	if err != nil {
		state.memo.Put(occ.Key(), cache.NonConvertible())
		in.skip(state, raw, metadata.SkipInvalidContent, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrPath, fetched.Location()),
			metadata.NewAttr(metadata.AttrCause, metadata.CauseContentInvalid.String()),
			metadata.NewAttr(metadata.AttrError, err.Error()),
		})
		return "", false
	}

	replacement := encoder.Encode(svg)
	state.memo.Put(occ.Key(), cache.Converted(replacement))

	record := Inlined{
		Reference:   raw,
		Location:    fetched.Location(),
		Digest:      hashutil.ShortDigest(svg),
		EncodedSize: len(replacement),
	}
	state.inlined = append(state.inlined, record)
	in.metadataSink.RecordInline(raw, record.Digest, record.EncodedSize)

	return replacement, true
}

// cachedRecord reuses the first record made for the same reference.
func (in *Inliner) cachedRecord(state *rewriteState, raw string) Inlined {
	for _, rec := range state.inlined {
		if rec.Reference == raw && !rec.Cached {
			rec.Cached = true
			return rec
		}
	}
	return Inlined{Reference: raw, Cached: true}
}

func (in *Inliner) skip(state *rewriteState, raw string, reason metadata.SkipReason, attrs []metadata.Attribute) {
	state.skipped = append(state.skipped, Skipped{Reference: raw, Reason: reason})
	in.metadataSink.RecordSkip(raw, reason, attrs)
}

func verdictReason(verdict resolver.Verdict) metadata.SkipReason {
	switch verdict {
	case resolver.VerdictDataURI:
		return metadata.SkipDataURI
	case resolver.VerdictFragmentOnly:
		return metadata.SkipFragmentOnly
	default:
		return metadata.SkipNotSVG
	}
}
