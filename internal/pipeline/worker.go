package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/store"
)

// Outcome is a finished outline, either freshly built or read from cache.
type Outcome struct {
	Hash     string
	Forest   doctree.Forest
	Strategy string
	BodyFont float64
	Accuracy float64
	Cached   bool
}

// Worker outlines documents. The cache is optional.
type Worker struct {
	builder *outline.Builder
	cache   *store.Store
	log     *slog.Logger
}

func NewWorker(builder *outline.Builder, cache *store.Store, log *slog.Logger) *Worker {
	return &Worker{
		builder: builder,
		cache:   cache,
		log:     log,
	}
}

// Process runs the outline pipeline for a queued job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusOutlining, "outlining")
	out, err := w.outline(ctx, job.Filename, job.FileData(), func() {
		job.SetStatus(StatusStoring, "caching")
	})
	if err != nil {
		log.Error("outline failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "outlining")
		return
	}

	job.SetOutcome(out)
	if out.Cached {
		job.SetStatus(StatusCached, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// Outline returns the outline for a document's bytes, consulting and
// filling the cache when one is configured.
func (w *Worker) Outline(ctx context.Context, filename string, data []byte) (*Outcome, error) {
	return w.outline(ctx, filename, data, nil)
}

// outline calls storing, when non-nil, just before a fresh outline is
// written to the cache.
func (w *Worker) outline(ctx context.Context, filename string, data []byte, storing func()) (*Outcome, error) {
	hash := ContentHashHex(data)
	log := w.log.With("filename", filename, "hash", hash[:12])

	if out, ok := w.cached(ctx, hash, log); ok {
		log.Info("cache hit")
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The PDF readers need a seekable file on disk, so write to temp file.
	tmp, err := os.CreateTemp("", "docoutline-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	res, err := w.builder.Build(tmpPath)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Hash:     hash,
		Forest:   res.Forest,
		Strategy: string(res.Strategy),
		BodyFont: res.BodyFont,
		Accuracy: res.Accuracy,
	}
	log.Info("outline built",
		"sections", out.Forest.Count(),
		"strategy", out.Strategy,
		"accuracy", out.Accuracy,
	)

	if w.cache != nil && storing != nil {
		storing()
	}
	w.store(ctx, filename, out, log)
	return out, nil
}

func (w *Worker) cached(ctx context.Context, hash string, log *slog.Logger) (*Outcome, bool) {
	if w.cache == nil {
		return nil, false
	}
	e, err := w.cache.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("cache lookup failed, proceeding", "error", err)
		}
		return nil, false
	}
	var forest doctree.Forest
	if err := json.Unmarshal(e.Outline, &forest); err != nil {
		log.Warn("cached outline unreadable, rebuilding", "error", err)
		return nil, false
	}
	return &Outcome{
		Hash:     hash,
		Forest:   forest,
		Strategy: e.Strategy,
		BodyFont: e.BodyFont,
		Accuracy: e.Accuracy,
		Cached:   true,
	}, true
}

func (w *Worker) store(ctx context.Context, filename string, out *Outcome, log *slog.Logger) {
	if w.cache == nil {
		return
	}
	forest := out.Forest
	if forest == nil {
		forest = doctree.Forest{}
	}
	data, err := json.Marshal(forest)
	if err != nil {
		log.Warn("encode outline for cache failed", "error", err)
		return
	}
	err = w.cache.Put(ctx, store.Entry{
		Hash:     out.Hash,
		Filename: filename,
		Strategy: out.Strategy,
		BodyFont: out.BodyFont,
		Accuracy: out.Accuracy,
		Outline:  data,
	})
	if err != nil {
		log.Warn("cache write failed", "error", err)
	}
}
