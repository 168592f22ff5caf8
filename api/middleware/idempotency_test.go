package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

// mountedRouter mirrors how api/routes wires the middleware: r.Use inside
// the /api/v1 subrouter, before route resolution.
func mountedRouter(store *fakeStore, handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, nil))
		r.Post("/units/{unitId}/assign", handler)
		r.Post("/collections", handler)
		r.Patch("/collections/{collectionId}/sizes/{size}", handler)
	})
	return r
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{"unit assign", http.MethodPost, "/api/v1/units/6a0f8f6e/assign", defaultIdempotencyTTL, true},
		{"unit unassign", http.MethodPost, "/api/v1/units/6a0f8f6e/unassign", defaultIdempotencyTTL, true},
		{"manual unit create", http.MethodPost, "/api/v1/items/6a0f8f6e/units", defaultIdempotencyTTL, true},
		{"template set", http.MethodPost, "/api/v1/collections/6a0f8f6e/sizes", defaultIdempotencyTTL, true},
		{"template set trailing slash", http.MethodPost, "/api/v1/collections/6a0f8f6e/sizes/", defaultIdempotencyTTL, true},
		{"template update", http.MethodPatch, "/api/v1/collections/6a0f8f6e/sizes/M", defaultIdempotencyTTL, true},
		{"reads pass through", http.MethodGet, "/api/v1/units/6a0f8f6e/assign", 0, false},
		{"collection create not guarded", http.MethodPost, "/api/v1/collections", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, strings.TrimSuffix(tt.path, "/"))
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyGuardsMountedAssignRoute(t *testing.T) {
	store := newFakeStore()
	handlerCalled := false
	router := mountedRouter(store, func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"x"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a key, got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatal("handler should not run without idempotency key")
	}

	keyed := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"x"}`))
	keyed.Header.Set("Idempotency-Key", "abc")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, keyed)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 with a key, got %d", resp.Code)
	}
	if !handlerCalled {
		t.Fatal("expected handler to run with a key")
	}
	if len(store.data) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.data))
	}
}

func TestIdempotencyGuardsMountedTemplateUpdate(t *testing.T) {
	store := newFakeStore()
	router := mountedRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/collections/6a0f8f6e/sizes/M", strings.NewReader(`{"quantity":5}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a key, got %d", resp.Code)
	}
}

func TestIdempotencySkipsUnmatchedMountedRoute(t *testing.T) {
	store := newFakeStore()
	handlerCalled := false
	router := mountedRouter(store, func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collections", strings.NewReader(`{"name":"drop"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !handlerCalled {
		t.Fatal("unmatched route should pass through without a key")
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected no stored record, got %d", len(store.data))
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls int
	router := mountedRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"x"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", resp.Code)
	}

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"x"}`))
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, replay)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	router := mountedRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"x"}`))
	req.Header.Set("Idempotency-Key", "xyz")
	router.ServeHTTP(httptest.NewRecorder(), req)

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/units/6a0f8f6e/assign", strings.NewReader(`{"owner_id":"y"}`))
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}
