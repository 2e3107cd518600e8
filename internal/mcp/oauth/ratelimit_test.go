package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 3, false, time.Minute, nil)

	// Burst of 3 should pass.
	for i := 0; i < 3; i++ {
		if !rl.Allow("192.0.2.1") {
			t.Errorf("Allow() request %d should be allowed within burst", i)
		}
	}

	// Fourth immediate request exceeds the burst.
	if rl.Allow("192.0.2.1") {
		t.Error("Allow() should deny request exceeding burst")
	}

	// Different key has its own bucket.
	if !rl.Allow("192.0.2.2") {
		t.Error("Allow() should allow request from different key")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(100, 1, false, time.Minute, nil)

	if !rl.Allow("192.0.2.1") {
		t.Fatal("Allow() first request should be allowed")
	}
	if rl.Allow("192.0.2.1") {
		t.Fatal("Allow() second immediate request should be denied")
	}

	// At 100 tokens/s a token is back within 10ms.
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("192.0.2.1") {
		t.Error("Allow() should allow request after refill")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:54321",
			want:       "192.0.2.1",
		},
		{
			name:       "xff ignored without trust",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.5",
			trustProxy: false,
			want:       "192.0.2.1",
		},
		{
			name:       "xff honored with trust",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.5",
			trustProxy: true,
			want:       "203.0.113.5",
		},
		{
			name:       "xff first of multiple",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.5, 198.51.100.7",
			trustProxy: true,
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip with trust",
			remoteAddr: "192.0.2.1:54321",
			xRealIP:    "203.0.113.9",
			trustProxy: true,
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}

			got := getClientIP(r, tt.trustProxy)
			if got != tt.want {
				t.Errorf("getClientIP() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractIPFromAddr(t *testing.T) {
	if got := extractIPFromAddr("192.0.2.1:8080"); got != "192.0.2.1" {
		t.Errorf("extractIPFromAddr() = %s, want 192.0.2.1", got)
	}
	if got := extractIPFromAddr("192.0.2.1"); got != "192.0.2.1" {
		t.Errorf("extractIPFromAddr() without port = %s, want 192.0.2.1", got)
	}
}
