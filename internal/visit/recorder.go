// internal/visit/recorder.go
//
// Visit assembly and persistence.
//
// Context
// -------
// The Recorder is the join point of the tracking pipeline: it merges
// the resolved client IP, the geo enrichment result, and the UA
// classification into one timestamped Record, then appends it through
// the store.  Enrichment and classification can never fail the call;
// only a storage error propagates, and the handler surfaces that as a
// 500.
//
// Workflow
// --------
//  1. Enrich(ctx, ip) — best-effort, bounded by the geo timeout.
//  2. ua.Classify(rawUA) — pure.
//  3. Assemble Record with the injected clock (UTC).
//  4. appender.Append(ctx, rec) — the store serializes concurrent
//     appends, so Record is safe to call from any number of request
//     goroutines.
//
// Notes
// -----
//   - The constructed Record is returned for composition and tests;
//     handlers usually discard it.
//   - Oxford commas, two spaces after periods.
package visit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/beacon/internal/geo"
	"github.com/yanizio/beacon/internal/ua"
)

// Appender is the slice of the store the Recorder needs.  The store
// package's backends satisfy it.
type Appender interface {
	Append(ctx context.Context, rec Record) error
}

// Recorder assembles and persists visit records.
type Recorder struct {
	appender Appender
	enricher *geo.Enricher
	now      func() time.Time // injectable clock for tests
}

// NewRecorder wires a Recorder.  enricher may be nil, which disables
// geo enrichment entirely (all geographic fields null).
func NewRecorder(a Appender, e *geo.Enricher) *Recorder {
	return &Recorder{appender: a, enricher: e, now: func() time.Time { return time.Now().UTC() }}
}

// Record enriches, classifies, assembles, and appends one visit.  The
// token is stored verbatim; ip and rawUA may be empty, in which case
// the corresponding fields are null.  Only an append failure returns an
// error.
func (r *Recorder) Record(ctx context.Context, token, ip, rawUA string) (Record, error) {
	info := r.enricher.Enrich(ctx, ip)
	class := ua.Classify(rawUA)

	rec := Record{
		Time:          r.now(),
		IP:            optional(ip),
		Country:       info.Country,
		Region:        info.Region,
		City:          info.City,
		Lat:           info.Lat,
		Lon:           info.Lon,
		ISP:           info.ISP,
		Token:         token,
		UserAgent:     optional(rawUA),
		Browser:       class.Browser,
		OS:            class.OS,
		GoogleMapsURL: geo.MapURL(info.Lat, info.Lon),
	}

	if err := r.appender.Append(ctx, rec); err != nil {
		return rec, err
	}

	zap.S().Debugw("visit recorded",
		"token", token,
		"ip", ip,
		"browser", class.Browser,
		"os", class.OS,
	)
	return rec, nil
}

// optional maps "" to nil so absent inputs serialize as JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
