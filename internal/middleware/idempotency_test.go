package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const recipeBody = `{"name":"Pancakes","text":"Mix and fry.","cooking_time":15}`

func newRecipePost(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/recipes", bytes.NewReader([]byte(recipeBody)))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	req.RemoteAddr = "192.168.1.1:12345"
	return req
}

// ============================================================================
// Store Tests
// ============================================================================

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	if store.ttl != 24*time.Hour {
		t.Errorf("expected TTL 24h, got %v", store.ttl)
	}
	if store.entries == nil {
		t.Error("entries map should be initialized")
	}
}

func TestIdempotencyStore_Stop_StopsCleanupLoop(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{
		TTL:     time.Hour,
		Cleanup: time.Millisecond,
	})

	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		store.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Stop() did not return within timeout")
	}
}

// ============================================================================
// Cache Key Tests
// ============================================================================

func TestGenerateKey_ScopesByEveryComponent(t *testing.T) {
	t.Parallel()
	base := generateKey("user:chef", "retry-1", "POST", "/v1/recipes", []byte(recipeBody))

	if len(base) != 64 { // SHA256 hex
		t.Fatalf("expected 64 char hex string, got %d chars", len(base))
	}
	if got := generateKey("user:chef", "retry-1", "POST", "/v1/recipes", []byte(recipeBody)); got != base {
		t.Error("same inputs should produce the same key")
	}

	variants := map[string]string{
		"user":   generateKey("user:other", "retry-1", "POST", "/v1/recipes", []byte(recipeBody)),
		"header": generateKey("user:chef", "retry-2", "POST", "/v1/recipes", []byte(recipeBody)),
		"method": generateKey("user:chef", "retry-1", "PATCH", "/v1/recipes", []byte(recipeBody)),
		"path":   generateKey("user:chef", "retry-1", "POST", "/v1/recipes/recipe:1/favorite", []byte(recipeBody)),
		"body":   generateKey("user:chef", "retry-1", "POST", "/v1/recipes", []byte(`{"name":"Waffles"}`)),
	}
	for component, key := range variants {
		if key == base {
			t.Errorf("changing the %s should change the cache key", component)
		}
	}
}

// ============================================================================
// Method and Key Filtering Tests
// ============================================================================

func TestIdempotency_OnlyGuardsPOSTAndPATCH(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			handler := &captureHandler{}
			req := httptest.NewRequest(method, "/v1/recipes/recipe:1", nil)
			req.Header.Set("Idempotency-Key", "retry-1")
			rr := httptest.NewRecorder()

			Idempotency(store)(handler).ServeHTTP(rr, req)

			if !handler.called {
				t.Errorf("handler should be called for %s", method)
			}
			if rr.Header().Get("X-Idempotency-Replayed") != "" {
				t.Errorf("%s should not be cached", method)
			}
		})
	}
}

func TestIdempotency_NoKey_ProcessesEveryRequest(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	callCount := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusCreated)
	})
	middleware := Idempotency(store)

	middleware(handler).ServeHTTP(httptest.NewRecorder(), newRecipePost(""))
	middleware(handler).ServeHTTP(httptest.NewRecorder(), newRecipePost(""))

	if callCount != 2 {
		t.Errorf("expected handler called twice without a key, got %d", callCount)
	}
}

// ============================================================================
// Replay Tests
// ============================================================================

func TestIdempotency_RetriedCreate_ReplaysFirstResponse(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	callCount := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", "/v1/recipes/recipe:1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"recipe:1"}`))
	})
	middleware := Idempotency(store)

	rr1 := httptest.NewRecorder()
	middleware(handler).ServeHTTP(rr1, newRecipePost("retry-1"))
	if rr1.Header().Get("X-Idempotency-Replayed") != "" {
		t.Error("first request should not be replayed")
	}

	rr2 := httptest.NewRecorder()
	middleware(handler).ServeHTTP(rr2, newRecipePost("retry-1"))

	if callCount != 1 {
		t.Errorf("expected handler called once, got %d", callCount)
	}
	if rr2.Code != http.StatusCreated {
		t.Errorf("expected cached status %d, got %d", http.StatusCreated, rr2.Code)
	}
	if rr2.Body.String() != `{"id":"recipe:1"}` {
		t.Errorf("expected cached body, got %q", rr2.Body.String())
	}
	if rr2.Header().Get("Location") != "/v1/recipes/recipe:1" {
		t.Errorf("expected cached Location header, got %q", rr2.Header().Get("Location"))
	}
	if rr2.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replayed request should carry X-Idempotency-Replayed")
	}
}

func TestIdempotency_DifferentUsers_DoNotShareCache(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	callCount := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusCreated)
	})
	middleware := Idempotency(store)

	for _, userID := range []string{"user:chef", "user:baker"} {
		req := newRecipePost("retry-1")
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
		middleware(handler).ServeHTTP(httptest.NewRecorder(), req)
	}

	if callCount != 2 {
		t.Errorf("expected handler called twice for different users, got %d", callCount)
	}
}

func TestIdempotency_Anonymous_ScopedByRemoteAddr(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	callCount := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusCreated)
	})
	middleware := Idempotency(store)

	for _, addr := range []string{"10.0.0.1:12345", "10.0.0.2:54321"} {
		req := newRecipePost("retry-1")
		req.RemoteAddr = addr
		middleware(handler).ServeHTTP(httptest.NewRecorder(), req)
	}

	if callCount != 2 {
		t.Errorf("expected handler called twice for different addresses, got %d", callCount)
	}
}

func TestIdempotency_InFlight_SecondRequestWaits(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	var callCount int32
	requestStarted := make(chan struct{})
	proceed := make(chan struct{})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&callCount, 1)
		close(requestStarted)
		<-proceed
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"recipe:1"}`))
	})
	middleware := Idempotency(store)

	var wg sync.WaitGroup
	results := make([]*httptest.ResponseRecorder, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = httptest.NewRecorder()
		middleware(handler).ServeHTTP(results[0], newRecipePost("inflight"))
	}()

	<-requestStarted

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = httptest.NewRecorder()
		middleware(handler).ServeHTTP(results[1], newRecipePost("inflight"))
	}()

	time.Sleep(50 * time.Millisecond)
	close(proceed)
	wg.Wait()

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("expected handler called once, got %d", callCount)
	}
	for i, rr := range results {
		if rr.Code != http.StatusCreated {
			t.Errorf("request %d: expected status %d, got %d", i, http.StatusCreated, rr.Code)
		}
	}
	if results[1].Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("waiting request should carry X-Idempotency-Replayed")
	}
}

// ============================================================================
// Expiry Tests
// ============================================================================

func TestIdempotencyStore_Cleanup_RemovesOnlyExpiredEntries(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{
		TTL:     100 * time.Millisecond,
		Cleanup: time.Hour,
	})
	defer store.Stop()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	middleware := Idempotency(store)
	middleware(handler).ServeHTTP(httptest.NewRecorder(), newRecipePost("expiring"))

	store.cleanup()
	store.mu.RLock()
	entryCount := len(store.entries)
	store.mu.RUnlock()
	if entryCount != 1 {
		t.Errorf("expected 1 fresh entry to survive cleanup, got %d", entryCount)
	}

	time.Sleep(150 * time.Millisecond)
	store.cleanup()
	store.mu.RLock()
	entryCount = len(store.entries)
	store.mu.RUnlock()
	if entryCount != 0 {
		t.Errorf("expected 0 entries after TTL, got %d", entryCount)
	}
}

func TestIdempotency_ExpiredEntry_ProcessesAgain(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{
		TTL:     50 * time.Millisecond,
		Cleanup: time.Hour,
	})
	defer store.Stop()

	callCount := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusCreated)
	})
	middleware := Idempotency(store)

	middleware(handler).ServeHTTP(httptest.NewRecorder(), newRecipePost("expire"))
	time.Sleep(100 * time.Millisecond)

	rr := httptest.NewRecorder()
	middleware(handler).ServeHTTP(rr, newRecipePost("expire"))

	if callCount != 2 {
		t.Errorf("expected handler called twice after expiry, got %d", callCount)
	}
	if rr.Header().Get("X-Idempotency-Replayed") != "" {
		t.Error("request after expiry is fresh, not a replay")
	}
}

// ============================================================================
// Plumbing Tests
// ============================================================================

func TestIdempotencyResponseWriter_CapturesStatusAndBody(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	irw := &idempotencyResponseWriter{
		ResponseWriter: rr,
		status:         http.StatusOK,
	}

	irw.WriteHeader(http.StatusCreated)
	_, _ = irw.Write([]byte(`{"id":`))
	_, _ = irw.Write([]byte(`"recipe:1"}`))

	if irw.status != http.StatusCreated || rr.Code != http.StatusCreated {
		t.Errorf("expected status %d captured and forwarded, got %d / %d", http.StatusCreated, irw.status, rr.Code)
	}
	if irw.body.String() != `{"id":"recipe:1"}` {
		t.Errorf("expected combined captured body, got %q", irw.body.String())
	}
	if rr.Body.String() != `{"id":"recipe:1"}` {
		t.Errorf("expected forwarded body, got %q", rr.Body.String())
	}
}

func TestIdempotency_RestoresRequestBody(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Hour})
	defer store.Stop()

	var receivedBody []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})

	Idempotency(store)(handler).ServeHTTP(httptest.NewRecorder(), newRecipePost("body"))

	if string(receivedBody) != recipeBody {
		t.Errorf("expected handler to see the original body, got %q", string(receivedBody))
	}
}
