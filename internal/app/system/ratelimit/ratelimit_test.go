package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := New(3, time.Minute)
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Error("fourth attempt allowed, want denied")
	}
	if !l.Allow("b") {
		t.Error("other key should have its own bucket")
	}

	now = now.Add(20 * time.Second)
	if !l.Allow("a") {
		t.Error("attempt after refill interval denied")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(1, time.Second)
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("x")
	now = now.Add(3 * time.Second)
	l.Sweep()
	if l.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", l.Len())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_PerEmail(t *testing.T) {
	ll := NewLoginLimiter()
	r := httptest.NewRequest("POST", "/admin/session", nil)
	for i := 0; i < 5; i++ {
		if ok, _ := ll.Check(r, "Clerk@Example.org"); !ok {
			t.Fatalf("attempt %d denied", i+1)
		}
	}
	if ok, reason := ll.Check(r, "clerk@example.org "); ok || reason == "" {
		t.Errorf("sixth attempt: ok=%v reason=%q, want denied with reason", ok, reason)
	}
	ll.ResetEmail("clerk@example.org")
	if ok, _ := ll.Check(r, "clerk@example.org"); !ok {
		t.Error("attempt after reset denied")
	}
}
