package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
)

type memoryIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryIdempotencyStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return true, nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "storemock:idempotency:" + scope + ":" + id
}

func (s *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
		delete(s.ttls, key)
	}
	return nil
}

func idempotencyTestRouter(store *memoryIdempotencyStore, calls *int) http.Handler {
	cfg := config.IdempotencyConfig{TTL: 24 * time.Hour, CriticalTTL: 168 * time.Hour}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	router := chi.NewRouter()
	router.Use(Idempotency(store, cfg, logg))
	handler := func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"chk_1"}}`))
	}
	router.Post("/checkout-sessions", handler)
	router.Post("/checkout-sessions/{id}/complete", handler)
	router.Get("/checkout-sessions/{id}", handler)
	return router
}

func TestIdempotencyWithoutKeyRunsHandlerEachTime(t *testing.T) {
	calls := 0
	router := idempotencyTestRouter(newMemoryIdempotencyStore(), &calls)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(`{"currency":"usd"}`)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	calls := 0
	router := idempotencyTestRouter(newMemoryIdempotencyStore(), &calls)

	body := `{"currency":"usd"}`
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(second, req)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body %q does not match original %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected replayed content type, got %q", ct)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	calls := 0
	router := idempotencyTestRouter(newMemoryIdempotencyStore(), &calls)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(`{"currency":"usd"}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(`{"currency":"eur"}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(second, req)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("expected idempotency error code, got %s", second.Body.String())
	}
}

func TestIdempotencyScopesKeyByPath(t *testing.T) {
	calls := 0
	store := newMemoryIdempotencyStore()
	router := idempotencyTestRouter(store, &calls)

	for _, path := range []string{"/checkout-sessions/chk_1/complete", "/checkout-sessions/chk_2/complete"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "key-1")
		router.ServeHTTP(rec, req)
	}
	if calls != 2 {
		t.Fatalf("expected both checkouts to complete, handler ran %d times", calls)
	}
}

func TestIdempotencyCriticalRoutesUseLongTTL(t *testing.T) {
	calls := 0
	store := newMemoryIdempotencyStore()
	router := idempotencyTestRouter(store, &calls)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions/chk_1/complete", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(rec, req)

	for _, ttl := range store.ttls {
		if ttl != 168*time.Hour {
			t.Fatalf("expected critical ttl, got %s", ttl)
		}
	}
	if len(store.ttls) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.ttls))
	}
}

func TestIdempotencyConcurrentFreshKeyExecutesOnce(t *testing.T) {
	cfg := config.IdempotencyConfig{TTL: 24 * time.Hour, CriticalTTL: 168 * time.Hour}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := newMemoryIdempotencyStore()

	calls := 0
	entered := make(chan struct{})
	release := make(chan struct{})

	router := chi.NewRouter()
	router.Use(Idempotency(store, cfg, logg))
	router.Post("/checkout-sessions", func(w http.ResponseWriter, r *http.Request) {
		calls++
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"chk_1"}}`))
	})

	body := `{"currency":"usd"}`
	first := httptest.NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-race")
		router.ServeHTTP(first, req)
	}()

	// The duplicate arrives while the original is still executing. It must
	// not run the handler a second time.
	<-entered
	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-race")
	router.ServeHTTP(second, req)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 while original in flight, got %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), "CONFLICT") {
		t.Fatalf("expected conflict error code, got %s", second.Body.String())
	}

	close(release)
	wg.Wait()
	if calls != 1 {
		t.Fatalf("expected handler to run once for one fresh key, ran %d times", calls)
	}
	if first.Code != http.StatusCreated {
		t.Fatalf("expected original request to succeed, got %d", first.Code)
	}

	// Once the original has finished, the same key replays its response.
	third := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/checkout-sessions", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-race")
	router.ServeHTTP(third, req)
	if calls != 1 {
		t.Fatalf("expected replay without re-execution, handler ran %d times", calls)
	}
	if third.Body.String() != first.Body.String() {
		t.Fatalf("replayed body %q does not match original %q", third.Body.String(), first.Body.String())
	}
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	calls := 0
	store := newMemoryIdempotencyStore()
	router := idempotencyTestRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/chk_1", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if len(store.values) != 0 {
		t.Fatalf("expected nothing stored for unmatched route, got %d records", len(store.values))
	}
}
