// internal/geo/geo.go
//
// Best-effort IP geolocation.
//
// Context
// -------
// Each tracked visit is enriched with approximate geography before it
// is persisted.  Enrichment must never fail a request: any provider
// error, timeout, or unusable address degrades to an all-null Info,
// and the pipeline carries on.  Providers return the raw collaborator
// map (country, regionName, city, lat, lon, isp — every key optional);
// this package owns normalization, caching, and the derived map URL.
//
// Workflow
// --------
//  1. Enrich(ctx, ip) short-circuits on empty, unparseable, or
//     private/loopback addresses.
//  2. Cache lookup (memory LRU or Redis; see cache.go).
//  3. Cache miss → singleflight per IP → provider.Lookup bounded by
//     the configured timeout → normalize → cache store.
//
// Instrumentation
// ---------------
//   - geo_lookup_total / geo_lookup_errors_total counters.
//   - geo_cache_hits_total counter.
//   - DEBUG spans for skipped addresses and failed lookups.
//
// Notes
// -----
//   - The lookup context is detached from the request context so one
//     canceled request cannot fail a flight shared by others.
//   - Oxford commas, two spaces after periods.
package geo

import (
	"context"
	"math"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/beacon/internal/metrics"
)

// Info is the normalized enrichment result.  Nil fields serialize as
// JSON null, mirroring the lookup collaborator's optional keys.
type Info struct {
	Country *string
	Region  *string
	City    *string
	ISP     *string
	Lat     *float64
	Lon     *float64
}

// Provider performs one lookup against a geo data source and returns
// the collaborator map.  Implementations must honor ctx cancellation.
type Provider interface {
	Lookup(ctx context.Context, ip string) (map[string]any, error)
	Name() string
}

// DefaultTimeout bounds a provider call when the config leaves the
// timeout unset.
const DefaultTimeout = 2 * time.Second

// Enricher wraps a Provider with caching, per-IP deduplication, and
// silent degradation.  A nil provider yields an Enricher that always
// returns the zero Info, which is how deployments disable geo lookups.
type Enricher struct {
	provider Provider
	cache    Cache
	timeout  time.Duration
	sfg      singleflight.Group
}

// NewEnricher constructs an Enricher.  cache may be nil (no caching).
func NewEnricher(p Provider, cache Cache, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Enricher{provider: p, cache: cache, timeout: timeout}
}

// Enrich returns geo data for ip, or the zero Info when the address is
// absent, not globally routable, or the lookup fails.  It never
// returns an error; enrichment is strictly best-effort.
func (e *Enricher) Enrich(ctx context.Context, ip string) Info {
	if e == nil || e.provider == nil || ip == "" {
		return Info{}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || !routable(parsed) {
		zap.S().Debugw("geo lookup skipped", "ip", ip)
		return Info{}
	}

	if e.cache != nil {
		if info, ok := e.cache.Get(ctx, ip); ok {
			metrics.GeoCacheHitsTotal.Inc()
			return info
		}
	}

	v, err, _ := e.sfg.Do(ip, func() (interface{}, error) {
		// Detached context: the flight may be shared by several
		// requests, so a single caller's cancellation must not
		// abort it.  The configured timeout still applies.
		lookupCtx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		metrics.GeoLookupTotal.Inc()
		m, err := e.provider.Lookup(lookupCtx, ip)
		if err != nil {
			metrics.GeoLookupErrorsTotal.Inc()
			return nil, err
		}

		info := normalize(m)
		if e.cache != nil {
			// Store under the detached context too: the triggering
			// caller may already be gone, and the result belongs to
			// every request sharing the flight.
			e.cache.Set(lookupCtx, ip, info)
		}
		return info, nil
	})
	if err != nil {
		zap.S().Debugw("geo lookup failed",
			"ip", ip,
			"provider", e.provider.Name(),
			"err", err,
		)
		return Info{}
	}
	return v.(Info)
}

// routable reports whether ip can plausibly be geolocated.  Private,
// loopback, link-local, and unspecified addresses are served straight
// from the zero Info; sending them to a provider only burns quota.
func routable(ip net.IP) bool {
	return !(ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified())
}

// normalize converts a collaborator map into Info.  Every key is
// optional; string fields are kept only when non-empty, and the
// coordinates only when they arrived as JSON numbers (float64).  A
// string-typed "lat" is dropped while the remaining fields survive.
func normalize(m map[string]any) Info {
	return Info{
		Country: optString(m, "country"),
		Region:  optString(m, "regionName"),
		City:    optString(m, "city"),
		ISP:     optString(m, "isp"),
		Lat:     optFloat(m, "lat"),
		Lon:     optFloat(m, "lon"),
	}
}

func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func optFloat(m map[string]any, key string) *float64 {
	if f, ok := m[key].(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return &f
	}
	return nil
}

// MapURL derives the Google Maps query URL for a coordinate pair.  It
// returns nil unless both coordinates are present and finite; a lone
// latitude or longitude never produces a URL.
func MapURL(lat, lon *float64) *string {
	if lat == nil || lon == nil {
		return nil
	}
	u := "https://www.google.com/maps?q=" +
		strconv.FormatFloat(*lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(*lon, 'f', -1, 64)
	return &u
}
