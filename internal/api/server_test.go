package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

const testKey = "test-key"

func para(text string, size float64) pdfdoc.Block {
	return pdfdoc.Block{Lines: []pdfdoc.Line{{Runs: []pdfdoc.Run{{Text: text, Size: size}}}}}
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	open := func(string) (pdfdoc.Document, error) {
		return &pdfdoc.Memory{
			Pages: []pdfdoc.Page{
				{Blocks: []pdfdoc.Block{para("Scope", 10), para("Applies to all.", 10)}},
				{Blocks: []pdfdoc.Block{para("Terms", 10), para("Words mean things.", 10)}},
			},
			Entries: []pdfdoc.TOCEntry{
				{Level: 1, Title: "Scope", Page: 1},
				{Level: 1, Title: "Terms", Page: 2},
			},
		}, nil
	}

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	cfg := config.Defaults()
	cfg.APIKey = testKey
	cfg.WorkerCount = 1
	cfg.MaxUploadBytes = 1024

	log := slog.New(slog.DiscardHandler)
	worker := pipeline.NewWorker(outline.NewBuilder(open, log), cache, log)
	orch := pipeline.NewOrchestrator(cfg, worker, cache, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, cache, log, cfg), cache
}

func uploadRequest(t *testing.T, path, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func authGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func submit(t *testing.T, srv *Server, data []byte) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/outline", "file", "rules.pdf", data))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	id, _ := resp["job_id"].(string)
	if id == "" {
		t.Fatalf("expected job_id in %v", resp)
	}
	return id
}

func waitStatus(t *testing.T, srv *Server, id string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, authGet("/api/outline/"+id))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		job := resp["job"].(map[string]any)
		if pipeline.JobStatus(job["status"].(string)).Done() {
			return resp
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return nil
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestOutlineLifecycle(t *testing.T) {
	srv, cache := newTestServer(t)
	data := []byte("%PDF-1.7 fake")

	id := submit(t, srv, data)
	resp := waitStatus(t, srv, id)

	job := resp["job"].(map[string]any)
	if job["status"] != string(pipeline.StatusCompleted) {
		t.Fatalf("expected completed, got %v", job["status"])
	}
	forest, ok := resp["outline"].([]any)
	if !ok || len(forest) != 2 {
		t.Fatalf("expected 2-node outline, got %v", resp["outline"])
	}
	first := forest[0].(map[string]any)
	if first["title"] != "Scope" || first["content"] != "Scope\nApplies to all.\n" {
		t.Errorf("unexpected first node %v", first)
	}

	// Export as markdown.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authGet("/api/outline/"+id+"/export?format=md"))
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "# rules\n\n## Scope\n\n") {
		t.Errorf("unexpected markdown:\n%s", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "rules.md") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	// Cached under the content hash.
	hash := job["content_hash"].(string)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authGet("/api/cache/"+hash))
	if rec.Code != http.StatusOK {
		t.Errorf("cache: expected 200, got %d", rec.Code)
	}
	if n, _ := cache.Count(context.Background()); n != 1 {
		t.Errorf("expected 1 cached outline, got %d", n)
	}

	// Same bytes again come from the cache.
	again := waitStatus(t, srv, submit(t, srv, data))
	if s := again["job"].(map[string]any)["status"]; s != string(pipeline.StatusCached) {
		t.Errorf("expected cached, got %v", s)
	}
}

func TestConcurrentUploads(t *testing.T) {
	srv, _ := newTestServer(t)

	const n = 50
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		req := uploadRequest(t, "/api/outline", "file", "rules.pdf", []byte(fmt.Sprintf("%%PDF-%d", i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusAccepted {
			t.Errorf("upload %d: expected 202, got %d", i, code)
		}
	}
}

func TestOutlineRejectsNonPDF(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/outline", "file", "notes.txt", []byte("hi")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestOutlineRejectsLargeUpload(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/outline", "file", "big.pdf", bytes.Repeat([]byte("x"), 2048)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestBatchOutline(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"a.pdf", "b.docx"} {
		fw, _ := mw.CreateFormFile("files", name)
		fw.Write([]byte("content of " + name))
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/outline/batch", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Jobs))
	}
	if resp.Jobs[0]["job_id"] == nil {
		t.Errorf("expected pdf to be queued, got %v", resp.Jobs[0])
	}
	if resp.Jobs[1]["error"] == nil {
		t.Errorf("expected docx to be rejected, got %v", resp.Jobs[1])
	}
}

func TestExportErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authGet("/api/outline/missing/export"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}

	id := submit(t, srv, []byte("%PDF"))
	waitStatus(t, srv, id)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authGet("/api/outline/"+id+"/export?format=pdf"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestCachedOutlineMissing(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authGet("/api/cache/deadbeef"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd.pdf":  "passwd.pdf",
		`C:\Users\me\rules.pdf`: "rules.pdf",
		"a..b.pdf":              "a_b.pdf",
		"":                      "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
