// internal/track/track_test.go
//
// Handler tests for the tracking surface, driven through the real chi
// router so path params and middleware behave as in production.
//
// Covered behaviours:
//
//   • /t records then 302s to `next`; default target when absent
//   • open-redirect hardening: javascript:, scheme-relative, and
//     relative targets all fall back to the default — record unaffected
//   • /img records then renders the page embedding `src` or placeholder
//   • recording is unconditional and precedes the response choice
//   • X-Forwarded-For first hop lands in the stored record
//   • storage failure → 500, no partial response
//   • /visits returns the collection as JSON, /dashboard as HTML
//   • empty token 404s at the router

package track

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yanizio/beacon/internal/config"
	"github.com/yanizio/beacon/internal/visit"
)

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	mu      sync.Mutex
	recs    []visit.Record
	failSet bool
}

func (s *fakeStore) Append(_ context.Context, rec visit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("store offline")
	}
	s.recs = append(s.recs, rec)
	return nil
}

func (s *fakeStore) All(_ context.Context) ([]visit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return nil, errors.New("store offline")
	}
	return append([]visit.Record(nil), s.recs...), nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func (s *fakeStore) last() visit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[len(s.recs)-1]
}

const (
	defaultTarget = "https://landing.example.com/"
	placeholder   = "https://img.example.com/pixel.png"
)

func newTestRouter(st *fakeStore) http.Handler {
	cfg := &config.Config{
		Tracking: config.Tracking{
			DefaultTargetURL:    defaultTarget,
			PlaceholderImageURL: placeholder,
		},
	}
	// nil enricher: geo fields stay null, which is the degraded path
	// every tracking response must survive.
	rec := visit.NewRecorder(st, nil)
	return New(rec, st, cfg).Routes(0)
}

func get(t *testing.T, h http.Handler, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "198.51.100.7:54321"
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRedirectWithNext(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	w := get(t, h, "/t/camp-1?next=https://example.org/offer", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://example.org/offer" {
		t.Fatalf("Location = %q", loc)
	}
	if st.count() != 1 {
		t.Fatalf("recorded %d visits, want 1", st.count())
	}
	if got := st.last(); got.Token != "camp-1" {
		t.Fatalf("token = %q, want camp-1", got.Token)
	}
}

func TestRedirectDefaultTarget(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	w := get(t, h, "/t/camp-1", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != defaultTarget {
		t.Fatalf("Location = %q, want default target", loc)
	}
	if st.count() != 1 {
		t.Fatalf("missing next must still record the visit")
	}
}

func TestRedirectRejectsUnsafeTargets(t *testing.T) {
	cases := []string{
		"javascript:alert(1)",
		"//evil.example.com/path",
		"/relative/only",
		"ftp://example.com/file",
	}
	for _, next := range cases {
		st := &fakeStore{}
		h := newTestRouter(st)

		w := get(t, h, "/t/tok?next="+next, nil)
		if w.Code != http.StatusFound {
			t.Fatalf("next=%q: status = %d, want 302", next, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != defaultTarget {
			t.Fatalf("next=%q redirected to %q, want default target", next, loc)
		}
		if st.count() != 1 {
			t.Fatalf("next=%q: rejected target must not skip recording", next)
		}
	}
}

func TestImageVariant(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	w := get(t, h, "/img/pix-1?src=https://example.org/cat.jpg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "https://example.org/cat.jpg") {
		t.Fatalf("page does not embed the src image")
	}
	if st.count() != 1 {
		t.Fatalf("recorded %d visits, want 1", st.count())
	}
}

func TestImagePlaceholder(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	w := get(t, h, "/img/pix-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), placeholder) {
		t.Fatalf("page does not embed the placeholder image")
	}
}

func TestForwardedForFirstHop(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	get(t, h, "/t/tok", map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.1",
		"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15",
	})

	got := st.last()
	if got.IP == nil || *got.IP != "203.0.113.5" {
		t.Fatalf("IP = %v, want first forwarded hop", got.IP)
	}
	if got.OS != "iOS" {
		t.Fatalf("OS = %q, want iOS", got.OS)
	}
}

func TestStoreFailure(t *testing.T) {
	st := &fakeStore{failSet: true}
	h := newTestRouter(st)

	w := get(t, h, "/t/tok?next=https://example.org/", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Header().Get("Location") != "" {
		t.Fatalf("failed recording must not redirect")
	}
}

func TestVisitsJSON(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)
	get(t, h, "/t/camp-9", nil)

	w := get(t, h, "/visits", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"token":"camp-9"`) {
		t.Fatalf("visits payload missing record: %s", body)
	}
	// Absent geo must serialize as explicit null, not be omitted.
	if !strings.Contains(body, `"country":null`) {
		t.Fatalf("absent geo fields must be explicit nulls: %s", body)
	}
}

func TestDashboardHTML(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)
	get(t, h, "/t/camp-5", nil)

	w := get(t, h, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "camp-5") {
		t.Fatalf("dashboard does not list the recorded visit")
	}
}

func TestEmptyTokenNotFound(t *testing.T) {
	st := &fakeStore{}
	h := newTestRouter(st)

	w := get(t, h, "/t/", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for empty token", w.Code)
	}
	if st.count() != 0 {
		t.Fatalf("unmatched route must not record")
	}
}
