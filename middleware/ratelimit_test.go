// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"livepoll/models"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	// Effectively zero refill within the test, burst of 2
	l := NewIPRateLimiter(rate.Every(time.Hour), 2)

	if !l.Allow("1.1.1.1") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("1.1.1.1") {
		t.Error("second request should be allowed (burst)")
	}
	if l.Allow("1.1.1.1") {
		t.Error("third request should be denied")
	}

	// A different IP has its own bucket
	if !l.Allow("2.2.2.2") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 1)
	handler := RateLimit(l, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/polls/p1/vote", nil)
	req.RemoteAddr = "3.3.3.3:1234"

	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error != models.CodeRateLimited {
		t.Errorf("Expected error code %s, got %s", models.CodeRateLimited, resp.Error)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 1)
	handler := RateLimit(l, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Exhaust one IP's budget
	req := httptest.NewRequest("POST", "/polls/p1/vote", nil)
	req.Header.Set("X-Forwarded-For", "5.5.5.5")
	handler(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted IP, got %d", w.Code)
	}

	// Another IP is unaffected
	other := httptest.NewRequest("POST", "/polls/p1/vote", nil)
	other.Header.Set("X-Forwarded-For", "6.6.6.6")
	w = httptest.NewRecorder()
	handler(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for fresh IP, got %d", w.Code)
	}
}
