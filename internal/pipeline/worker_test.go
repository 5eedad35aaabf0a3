package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/store"
)

func para(text string, size float64) pdfdoc.Block {
	return pdfdoc.Block{Lines: []pdfdoc.Line{{Runs: []pdfdoc.Run{{Text: text, Size: size}}}}}
}

// memoryBuilder returns a builder that ignores the path and reads a fixed
// two-chapter document, plus a counter of how many times it was opened.
func memoryBuilder(openErr error) (*outline.Builder, *int) {
	opens := 0
	open := func(string) (pdfdoc.Document, error) {
		if openErr != nil {
			return nil, openErr
		}
		opens++
		return &pdfdoc.Memory{
			Pages: []pdfdoc.Page{
				{Blocks: []pdfdoc.Block{para("Chapter 1", 10), para("Alpha.", 10)}},
				{Blocks: []pdfdoc.Block{para("Chapter 2", 10), para("Beta.", 10)}},
			},
			Entries: []pdfdoc.TOCEntry{
				{Level: 1, Title: "Chapter 1", Page: 1},
				{Level: 1, Title: "Chapter 2", Page: 2},
			},
		}, nil
	}
	return outline.NewBuilder(open, nil), &opens
}

func openCache(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWorker_OutlineUsesCache(t *testing.T) {
	builder, opens := memoryBuilder(nil)
	cache := openCache(t)
	w := NewWorker(builder, cache, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	first, err := w.Outline(ctx, "doc.pdf", []byte("pdf-1"))
	if err != nil {
		t.Fatalf("first outline: %v", err)
	}
	if first.Cached {
		t.Error("expected first outline to be built")
	}
	if first.Strategy != "paragraph" || first.Forest.Count() != 2 {
		t.Errorf("unexpected outcome %+v", first)
	}
	built := *opens

	second, err := w.Outline(ctx, "copy.pdf", []byte("pdf-1"))
	if err != nil {
		t.Fatalf("second outline: %v", err)
	}
	if !second.Cached {
		t.Error("expected second outline to come from cache")
	}
	if *opens != built {
		t.Errorf("expected no document opens on cache hit, got %d more", *opens-built)
	}
	if second.Forest[0].Content != first.Forest[0].Content {
		t.Errorf("expected cached content %q, got %q", first.Forest[0].Content, second.Forest[0].Content)
	}

	if _, err := w.Outline(ctx, "other.pdf", []byte("pdf-2")); err != nil {
		t.Fatalf("third outline: %v", err)
	}
	if n, _ := cache.Count(ctx); n != 2 {
		t.Errorf("expected 2 cached outlines, got %d", n)
	}
}

func TestWorker_StoringHookOnlyForFreshCacheWrites(t *testing.T) {
	builder, _ := memoryBuilder(nil)
	ctx := context.Background()
	calls := 0
	storing := func() { calls++ }

	cached := NewWorker(builder, openCache(t), slog.New(slog.DiscardHandler))
	if _, err := cached.outline(ctx, "doc.pdf", []byte("pdf-1"), storing); err != nil {
		t.Fatalf("fresh outline: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 storing call for a fresh outline, got %d", calls)
	}
	if _, err := cached.outline(ctx, "doc.pdf", []byte("pdf-1"), storing); err != nil {
		t.Fatalf("cached outline: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no storing call on a cache hit, got %d", calls-1)
	}

	uncached := NewWorker(builder, nil, slog.New(slog.DiscardHandler))
	if _, err := uncached.outline(ctx, "doc.pdf", []byte("pdf-1"), storing); err != nil {
		t.Fatalf("uncached outline: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no storing call without a cache, got %d", calls-1)
	}
}

func TestWorker_OutlineWithoutCache(t *testing.T) {
	builder, _ := memoryBuilder(nil)
	w := NewWorker(builder, nil, slog.New(slog.DiscardHandler))

	out, err := w.Outline(context.Background(), "doc.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if out.Cached || len(out.Forest) != 2 {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestWorker_OutlineCanceled(t *testing.T) {
	builder, opens := memoryBuilder(nil)
	w := NewWorker(builder, nil, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Outline(ctx, "doc.pdf", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if *opens != 0 {
		t.Errorf("expected no opens after cancel, got %d", *opens)
	}
}

func TestWorker_ProcessFailure(t *testing.T) {
	builder, _ := memoryBuilder(&pdfdoc.OpenError{Path: "x", Err: errors.New("not a pdf")})
	w := NewWorker(builder, nil, slog.New(slog.DiscardHandler))

	job := NewJob("bad.pdf", []byte("garbage"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if len(snap.Summary.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", snap.Summary.Errors)
	}
}

func TestOrchestrator_RunsJobs(t *testing.T) {
	builder, _ := memoryBuilder(nil)
	cache := openCache(t)
	cfg := config.Defaults()
	cfg.WorkerCount = 2
	cfg.MaxQueueSize = 4

	log := slog.New(slog.DiscardHandler)
	orch := NewOrchestrator(cfg, NewWorker(builder, cache, log), cache, log)
	orch.Start(context.Background())
	defer orch.Stop()

	first := NewJob("a.pdf", []byte("same bytes"))
	if err := orch.Submit(first); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitDone(t, first)
	if s := first.Snapshot().Status; s != StatusCompleted {
		t.Fatalf("expected %q, got %q", StatusCompleted, s)
	}

	second := NewJob("b.pdf", []byte("same bytes"))
	if err := orch.Submit(second); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitDone(t, second)
	if s := second.Snapshot().Status; s != StatusCached {
		t.Errorf("expected %q, got %q", StatusCached, s)
	}

	if orch.GetJob(first.ID) != first {
		t.Error("expected job to be tracked by ID")
	}
	if orch.TrackedJobs() != 2 {
		t.Errorf("expected 2 tracked jobs, got %d", orch.TrackedJobs())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	builder, _ := memoryBuilder(nil)
	cfg := config.Defaults()
	cfg.MaxQueueSize = 1

	log := slog.New(slog.DiscardHandler)
	// Not started, so nothing drains the queue.
	orch := NewOrchestrator(cfg, NewWorker(builder, nil, log), nil, log)

	if err := orch.Submit(NewJob("a.pdf", []byte("a"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	overflow := NewJob("b.pdf", []byte("b"))
	if err := orch.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := overflow.Snapshot().Status; s != StatusFailed {
		t.Errorf("expected %q, got %q", StatusFailed, s)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}
}

func waitDone(t *testing.T, job *Job) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status.Done() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish, status %q", job.ID, job.Snapshot().Status)
}
