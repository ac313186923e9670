// internal/visit/recorder_test.go
//
// Unit-tests for visit assembly.
//
// Covered behaviours:
//
//   • field merge: token verbatim, empty ip/ua → null, classes always set
//   • timestamp comes from the injected clock, UTC
//   • append-only: N Records land in call order
//   • a store failure propagates; enrichment absence does not

package visit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memAppender collects records in memory.
type memAppender struct {
	mu   sync.Mutex
	recs []Record
	err  error
}

func (a *memAppender) Append(_ context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.recs = append(a.recs, rec)
	return nil
}

func TestRecordAssembly(t *testing.T) {
	app := &memAppender{}
	rec := NewRecorder(app, nil) // nil enricher → all-null geo
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	uaChrome := "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0 Safari/537.36"
	got, err := rec.Record(context.Background(), "camp-1", "203.0.113.5", uaChrome)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}

	if got.Token != "camp-1" {
		t.Fatalf("Token = %q, want camp-1", got.Token)
	}
	if got.Time != fixed {
		t.Fatalf("Time = %v, want injected clock value", got.Time)
	}
	if got.IP == nil || *got.IP != "203.0.113.5" {
		t.Fatalf("IP = %v", got.IP)
	}
	if got.Browser != "Chrome" || got.OS != "Windows" {
		t.Fatalf("classified as %s/%s, want Chrome/Windows", got.Browser, got.OS)
	}
	if got.UserAgent == nil || *got.UserAgent != uaChrome {
		t.Fatalf("UserAgent not stored verbatim")
	}
	if got.Country != nil || got.Lat != nil || got.GoogleMapsURL != nil {
		t.Fatalf("nil enricher must leave geo fields null")
	}

	if len(app.recs) != 1 {
		t.Fatalf("stored %d records, want 1", len(app.recs))
	}
}

func TestRecordAbsentInputs(t *testing.T) {
	app := &memAppender{}
	rec := NewRecorder(app, nil)

	got, err := rec.Record(context.Background(), "tok", "", "")
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if got.IP != nil {
		t.Fatalf("empty ip must store null, got %v", *got.IP)
	}
	if got.UserAgent != nil {
		t.Fatalf("empty ua must store null")
	}
	if got.Browser != "Unknown" || got.OS != "Unknown" {
		t.Fatalf("absent UA classified as %s/%s, want Unknown/Unknown", got.Browser, got.OS)
	}
}

func TestRecordAppendOrder(t *testing.T) {
	app := &memAppender{}
	rec := NewRecorder(app, nil)

	tokens := []string{"a", "b", "c", "d"}
	for _, tok := range tokens {
		if _, err := rec.Record(context.Background(), tok, "", ""); err != nil {
			t.Fatalf("Record(%s): %v", tok, err)
		}
	}

	if len(app.recs) != len(tokens) {
		t.Fatalf("stored %d records, want %d", len(app.recs), len(tokens))
	}
	for i, tok := range tokens {
		if app.recs[i].Token != tok {
			t.Fatalf("record %d has token %q, want %q", i, app.recs[i].Token, tok)
		}
	}
}

func TestRecordStoreFailure(t *testing.T) {
	app := &memAppender{err: errors.New("disk full")}
	rec := NewRecorder(app, nil)

	if _, err := rec.Record(context.Background(), "tok", "", ""); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}
