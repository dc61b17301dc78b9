package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/creatorden/backend/pkg/errors"
)

type fakeCounterStore struct {
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (f *fakeCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func walletTestPolicy(userLimit, ipLimit int) WalletRateLimitPolicy {
	return NewWalletRateLimitPolicy("wallet", time.Minute, userLimit, ipLimit)
}

func TestWalletRateLimitAllowsWithinWindow(t *testing.T) {
	store := newFakeCounterStore()
	mw := WalletRateLimit(walletTestPolicy(3, 10), store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/tip", nil)
		req = req.WithContext(WithUser(req.Context(), userID, false))
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
}

func TestWalletRateLimitBlocksOverLimit(t *testing.T) {
	store := newFakeCounterStore()
	mw := WalletRateLimit(walletTestPolicy(2, 10), store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	userID := uuid.New()
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/tip", nil)
		req = req.WithContext(WithUser(req.Context(), userID, false))
		last = httptest.NewRecorder()
		mw(handler).ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", last.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(last.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeRateLimit, payload.Error.Code)
	}
}

func TestWalletRateLimitIsolatesUsers(t *testing.T) {
	store := newFakeCounterStore()
	mw := WalletRateLimit(walletTestPolicy(1, 10), store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/tip", nil)
		req = req.WithContext(WithUser(req.Context(), uuid.New(), false))
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("distinct users must not share a window, got %d", rec.Code)
		}
	}
}

func TestWalletRateLimitFallsBackToIPForAnonymous(t *testing.T) {
	store := newFakeCounterStore()
	mw := WalletRateLimit(walletTestPolicy(5, 1), store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", nil)
	first.RemoteAddr = "203.0.113.9:4431"
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first anonymous request allowed, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", nil)
	second.RemoteAddr = "203.0.113.9:4432"
	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second anonymous request blocked, got %d", rec.Code)
	}
}
