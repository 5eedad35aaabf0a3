// Package inbox watches a directory and hands every PDF that lands in it to
// a handler once the file has been quiet for a debounce window.
//
// Typical usage:
//
//	w := inbox.New(dir, inbox.Options{Debounce: 500 * time.Millisecond})
//	err := w.Run(ctx, func(ctx context.Context, path string) error { ... })
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one settled PDF.
type Handler func(ctx context.Context, path string) error

// Options tunes the watcher.
type Options struct {
	// Debounce is the quiet period after the last write before a file is
	// handled. Default: 500ms.
	Debounce time.Duration
	// SkipExisting disables handling PDFs already present at startup.
	SkipExisting bool
	// Logger overrides slog.Default().
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Debounce <= 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Stats are point-in-time counters.
type Stats struct {
	Handled int64 `json:"handled"`
	Failed  int64 `json:"failed"`
}

// Watcher watches one directory. Handlers run one at a time.
type Watcher struct {
	dir  string
	opts Options

	handled atomic.Int64
	failed  atomic.Int64
}

func New(dir string, opts Options) *Watcher {
	opts.defaults()
	return &Watcher{dir: dir, opts: opts}
}

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	return Stats{Handled: w.handled.Load(), Failed: w.failed.Load()}
}

// Run blocks until ctx is done or the underlying watcher fails. Handler
// errors are logged and counted, never returned.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: new watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", w.dir, err)
	}
	log := w.opts.Logger.With("dir", w.dir)
	log.Info("watching inbox", "debounce", w.opts.Debounce)

	// Timers outlive Run only until runCtx is canceled.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	deb := newDebouncer(runCtx, w.opts.Debounce)
	defer deb.stop()

	if !w.opts.SkipExisting {
		existing, err := Scan(w.dir)
		if err != nil {
			return err
		}
		for _, path := range existing {
			deb.schedule(path)
		}
	}

	for {
		select {
		case <-runCtx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if IsPDF(ev.Name) {
				deb.schedule(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		case f := <-deb.fired:
			if deb.settle(f) {
				w.handle(runCtx, log, fn, f.path)
			}
		}
	}
}

// firing is a debounce timer expiry for one schedule of path.
type firing struct {
	path string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces repeated events per path. Only the Run goroutine
// calls schedule, settle and stop; timers only send on fired.
type debouncer struct {
	ctx     context.Context
	delay   time.Duration
	fired   chan firing
	pending map[string]pendingFile
	gen     uint64
}

func newDebouncer(ctx context.Context, delay time.Duration) *debouncer {
	return &debouncer{
		ctx:     ctx,
		delay:   delay,
		fired:   make(chan firing),
		pending: make(map[string]pendingFile),
	}
}

// schedule (re)starts the quiet period for path. A timer that already fired
// but was not yet settled becomes stale.
func (d *debouncer) schedule(path string) {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.gen++
	f := firing{path: path, gen: d.gen}
	t := time.AfterFunc(d.delay, func() {
		select {
		case d.fired <- f:
		case <-d.ctx.Done():
		}
	})
	d.pending[path] = pendingFile{timer: t, gen: f.gen}
}

// settle reports whether f is the latest schedule of its path and, if so,
// forgets the path.
func (d *debouncer) settle(f firing) bool {
	p, ok := d.pending[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.path)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}

func (w *Watcher) handle(ctx context.Context, log *slog.Logger, fn Handler, path string) {
	if _, err := os.Stat(path); err != nil {
		// Removed or renamed before it settled.
		return
	}
	start := time.Now()
	if err := fn(ctx, path); err != nil {
		w.failed.Add(1)
		log.Error("handle file failed", "path", path, "error", err)
		return
	}
	w.handled.Add(1)
	log.Info("handled file", "path", path, "duration_ms", time.Since(start).Milliseconds())
}

// Scan returns the PDFs already in dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("inbox: scan %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPDF(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// IsPDF reports whether name looks like a finished PDF: a .pdf extension,
// not hidden, and not an editor lock or partial download.
func IsPDF(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".pdf")
}
