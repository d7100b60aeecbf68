package todos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"todo-api/todos/application"
	"todo-api/todos/domain"
	"todo-api/todos/infra"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})
	h := RequestIDMiddleware()(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/todos", nil))
	if seen == "" {
		t.Fatalf("expected a generated request id")
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}

	r := httptest.NewRequest(http.MethodGet, "http://example/todos", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if seen != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected caller id to be kept, got %q", seen)
	}
}

func TestAccessLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})
	h := AccessLogMiddleware(logger)(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/todos?id=1", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if line["msg"] != "handled" || line["status"] != float64(http.StatusTeapot) || line["bytes"] != float64(2) {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := RecoverMiddleware(discardLogger())(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	expectPlain(t, w, http.StatusInternalServerError)
}

func TestConcurrencyMiddleware_RejectsWhenFull(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
		w.WriteHeader(http.StatusOK)
	})
	h := ConcurrencyMiddleware(ConcurrencyOptions{Max: 1, AcquireTimeout: 5 * time.Millisecond, Logger: discardLogger()})(next)

	done := make(chan int)
	go func() {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
		done <- w.Code
	}()
	<-entered

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	expectPlain(t, w, http.StatusServiceUnavailable)

	close(unblock)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
}

// saturatedRouter devolve um router com uma vaga só, já ocupada por um
// GET /todos parado; chame o unblock retornado para liberar.
func saturatedRouter(t *testing.T, logger *slog.Logger) (http.Handler, func()) {
	t.Helper()
	store := &blockingStore{MemoryStore: infra.NewMemoryStore(), entered: make(chan struct{}), unblock: make(chan struct{})}
	h := NewRouter(Options{
		Service:        application.Service{Store: store, Schema: domain.NewSchema()},
		Logger:         logger,
		MaxInFlight:    1,
		AcquireTimeout: 5 * time.Millisecond,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/todos", nil))
	}()
	<-store.entered
	return h, func() {
		close(store.unblock)
		<-done
	}
}

// blockingStore segura o List até unblock fechar.
type blockingStore struct {
	*infra.MemoryStore
	entered chan struct{}
	unblock chan struct{}
}

func (b *blockingStore) List(ctx context.Context) ([]domain.Todo, error) {
	close(b.entered)
	<-b.unblock
	return b.MemoryStore.List(ctx)
}

func TestRouter_HealthzBypassesConcurrencyCap(t *testing.T) {
	h, unblock := saturatedRouter(t, discardLogger())
	defer unblock()

	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from healthz under saturation, got %d", w.Code)
	}
	expectPlain(t, do(t, h, http.MethodGet, "/todos/1", ""), http.StatusServiceUnavailable)
}

func TestRouter_OverloadIsLoggedAsFailure(t *testing.T) {
	var buf syncBuffer
	h, unblock := saturatedRouter(t, slog.New(slog.NewJSONHandler(&buf, nil)))

	r := httptest.NewRequest(http.MethodPost, "http://example/todos", strings.NewReader(`{"id":"9","todo":"x"}`))
	r.Header.Set(RequestIDHeader, "overload-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	expectPlain(t, w, http.StatusServiceUnavailable)
	unblock()

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q", line)
		}
		if rec["msg"] != "request failed" {
			continue
		}
		found = true
		if rec["level"] != "ERROR" || rec["status"] != float64(http.StatusServiceUnavailable) || rec["request_id"] != "overload-1" {
			t.Fatalf("unexpected failure log %v", rec)
		}
	}
	if !found {
		t.Fatalf("expected the 503 to be logged, got %q", buf.String())
	}
}

// syncBuffer é um bytes.Buffer seguro para goroutines (o router loga de duas).
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConcurrencyMiddleware_DisabledPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	h := ConcurrencyMiddleware(ConcurrencyOptions{})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
}

type failingStats struct{}

func (failingStats) Record(context.Context, domain.StatsEvent) error { return errors.New("down") }

func TestRouter_RecordsStatsByRouteTemplate(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	h := NewRouter(Options{
		Service:   application.Service{Store: infra.NewMemoryStore(), Schema: domain.NewSchema()},
		Logger:    discardLogger(),
		Stats:     stats,
		StatsView: stats,
	})

	do(t, h, http.MethodGet, "/todos/1", "")
	do(t, h, http.MethodGet, "/todos/9", "")
	do(t, h, http.MethodDelete, "/todos/2", "")

	snap := stats.Snapshot()
	if got := snap.ByRoute["GET /todos/{id}"]; got != (infra.Counters{OK: 1, Failed: 1}) {
		t.Fatalf("unexpected GET counters %+v (all: %v)", got, snap.ByRoute)
	}
	if got := snap.ByRoute["DELETE /todos/{id}"]; got.OK != 1 {
		t.Fatalf("unexpected DELETE counters %+v", got)
	}
	if snap.ByStatus[http.StatusNoContent] != 1 {
		t.Fatalf("expected one 204, got %v", snap.ByStatus)
	}

	w := do(t, h, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"GET /todos/{id}"`) {
		t.Fatalf("unexpected /stats response %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_CountsUnmatchedRoutes(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	h := NewRouter(Options{
		Service: application.Service{Store: infra.NewMemoryStore(), Schema: domain.NewSchema()},
		Logger:  discardLogger(),
		Stats:   stats,
	})

	do(t, h, http.MethodGet, "/nope/123", "")
	do(t, h, http.MethodGet, "/other", "")
	do(t, h, http.MethodPut, "/todos/1", `{"id":"1","todo":"x"}`)

	snap := stats.Snapshot()
	if got := snap.ByRoute["GET "+domain.UnmatchedRoute]; got != (infra.Counters{Failed: 2}) {
		t.Fatalf("expected 2 failed unmatched GETs, got %+v (all: %v)", got, snap.ByRoute)
	}
	if snap.ByStatus[http.StatusMethodNotAllowed] != 1 || snap.Total.Failed != 3 {
		t.Fatalf("expected the 405 to be counted, got %+v %v", snap.Total, snap.ByStatus)
	}
	for route := range snap.ByRoute {
		if strings.Contains(route, "/nope") || strings.Contains(route, "/other") {
			t.Fatalf("raw path leaked into stats key %q", route)
		}
	}
}

func TestRouter_StatsFailureDoesNotFailRequest(t *testing.T) {
	h := NewRouter(Options{
		Service: application.Service{Store: infra.NewMemoryStore(), Schema: domain.NewSchema()},
		Logger:  discardLogger(),
		Stats:   failingStats{},
	})

	if w := do(t, h, http.MethodGet, "/todos", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	expectPlain(t, do(t, h, http.MethodGet, "/stats", ""), http.StatusNotFound)
}

func TestFail_LogsViolations(t *testing.T) {
	var buf bytes.Buffer
	h := NewRouter(Options{
		Service: application.Service{Store: infra.NewMemoryStore(), Schema: domain.NewSchema()},
		Logger:  slog.New(slog.NewJSONHandler(&buf, nil)),
	})

	do(t, h, http.MethodPost, "/todos", `{"id":"3"}`)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q", line)
		}
		if rec["msg"] != "request failed" {
			continue
		}
		found = true
		if rec["level"] != "WARN" || rec["status"] != float64(http.StatusBadRequest) || rec["violations"] == nil {
			t.Fatalf("unexpected failure log %v", rec)
		}
		if rec["request_id"] == "" {
			t.Fatalf("expected request id in failure log")
		}
	}
	if !found {
		t.Fatalf("expected a request failed log line, got %q", buf.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrMalformedID, http.StatusBadRequest},
		{&domain.ValidationError{}, http.StatusBadRequest},
		{domain.ErrDuplicateID, http.StatusConflict},
		{fmt.Errorf("wrap: %w", domain.ErrOverloaded), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.code {
			t.Fatalf("statusFor(%v): expected %d, got %d", tt.err, tt.code, got)
		}
	}
}
