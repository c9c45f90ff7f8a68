package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/processor"
)

type fakeProcessor struct {
	summary *processor.RunSummary
	err     error
	calls   int
}

func (p *fakeProcessor) Run(ctx context.Context) (*processor.RunSummary, error) {
	p.calls++
	return p.summary, p.err
}

func TestHandleRun(t *testing.T) {
	summary := &processor.RunSummary{
		RunID:  "run-1",
		Status: processor.StatusOK,
		Totals: processor.Counts{Scanned: 3, Moved: 3, Processed: 3},
	}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			proc := &fakeProcessor{summary: summary}
			h := NewRouter(proc, logger.Nop())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if proc.calls != 1 {
				t.Errorf("Run called %d times, want 1", proc.calls)
			}

			var got processor.RunSummary
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.RunID != "run-1" || got.Totals.Processed != 3 {
				t.Errorf("body = %+v", got)
			}
		})
	}
}

func TestHandleRunCannotStart(t *testing.T) {
	proc := &fakeProcessor{err: processor.ErrRunInProgress}
	h := NewRouter(proc, logger.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already in progress") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewRouter(&fakeProcessor{}, logger.Nop())

	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "ok"},
		{"/metrics", "go_goroutines"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestUnknownMethod(t *testing.T) {
	h := NewRouter(&fakeProcessor{}, logger.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
