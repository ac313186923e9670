// internal/requestinfo/requestinfo_test.go
//
// Unit-tests for client IP resolution and the Enrich middleware.
//
// Covered behaviours:
//
//   • X-Forwarded-For first hop wins, trimmed, verbatim
//   • an empty first hop falls through to the next source
//   • X-Real-Ip fallback, then RemoteAddr host
//   • Enrich stores a *RequestInfo reachable via FromContext

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		xff, xrip  string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.5", "", "10.0.0.1:80", "203.0.113.5"},
		{"forwarded chain takes first hop", "203.0.113.5, 10.0.0.1, 172.16.0.9", "", "10.0.0.1:80", "203.0.113.5"},
		{"forwarded hop is trimmed", "  203.0.113.5 ,10.0.0.1", "", "10.0.0.1:80", "203.0.113.5"},
		{"forwarded kept verbatim even when unparseable", "unknown-host", "", "10.0.0.1:80", "unknown-host"},
		{"empty first hop falls through to remote addr", ", 10.0.0.1", "", "198.51.100.7:80", "198.51.100.7"},
		{"empty first hop falls through to real-ip", ", 10.0.0.1", "198.51.100.7", "10.0.0.1:80", "198.51.100.7"},
		{"real-ip fallback", "", "198.51.100.7", "10.0.0.1:80", "198.51.100.7"},
		{"remote addr fallback", "", "", "198.51.100.7:54321", "198.51.100.7"},
		{"remote addr without port", "", "", "198.51.100.7", "198.51.100.7"},
		{"ipv6 remote addr", "", "", "[2001:db8::1]:443", "2001:db8::1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				req.Header.Set("X-Real-Ip", tc.xrip)
			}

			if got := ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnrichStoresRequestInfo(t *testing.T) {
	var got *RequestInfo
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/t/tok", nil)
	req.RemoteAddr = "198.51.100.7:54321"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0 Safari/537.36")

	Enrich(inner).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatalf("FromContext returned nil inside wrapped handler")
	}
	if got.IP != "203.0.113.5" {
		t.Fatalf("IP = %q, want first forwarded hop", got.IP)
	}
	if got.UA.Browser != "Chrome" || got.UA.OS != "Windows" {
		t.Fatalf("classified as %s/%s, want Chrome/Windows", got.UA.Browser, got.UA.OS)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("Timestamp not set")
	}
	if got.Timestamp.Location() != got.Timestamp.UTC().Location() {
		t.Fatalf("Timestamp must be UTC")
	}
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(req.Context()) != nil {
		t.Fatalf("FromContext must be nil when Enrich has not run")
	}
}
