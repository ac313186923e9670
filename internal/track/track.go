// internal/track/track.go
//
// Tracking HTTP surface.
//
/*
Context
--------
Two tracking variants share one pipeline.  Both resolve the client from
the enrichment middleware, record the visit, and only then decide the
response:

  GET /t/{token}?next=<url>   – 302 redirect to `next`, or the
                                configured default target.
  GET /img/{token}?src=<url>  – HTML page embedding `src`, or the
                                configured placeholder image.

Recording is unconditional: a missing or rejected `next`/`src` never
skips the append.  The only failure that reaches the client is a
storage error, surfaced as a 500 with the collection left in its
last-known-good state.

Diagnostics ride on the same router: /visits (JSON collection),
/dashboard (HTML table), and /healthz.

Open-redirect hardening
-----------------------
`next` and `src` come from the query string, i.e. from whoever built
the link.  Only absolute http/https URLs are honored; anything else
(`javascript:`, scheme-relative, fragments) falls back to the
configured default.  The visit record is unaffected either way.

Notes
-----
  • The per-IP rate limiter guards only the tracking variants; the
    diagnostic routes stay unthrottled.
  • Oxford commas, two spaces after periods.
*/
package track

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yanizio/beacon/internal/config"
	"github.com/yanizio/beacon/internal/metrics"
	"github.com/yanizio/beacon/internal/requestinfo"
	"github.com/yanizio/beacon/internal/store"
	"github.com/yanizio/beacon/internal/view"
	"github.com/yanizio/beacon/internal/visit"
)

// Handler owns the tracking and diagnostic routes.
type Handler struct {
	recorder         *visit.Recorder
	store            store.Store
	defaultTarget    string
	placeholderImage string
}

// New wires the handler.  The store is only read for the diagnostic
// routes; all writes go through the recorder.
func New(rec *visit.Recorder, st store.Store, cfg *config.Config) *Handler {
	return &Handler{
		recorder:         rec,
		store:            st,
		defaultTarget:    cfg.Tracking.DefaultTargetURL,
		placeholderImage: cfg.Tracking.PlaceholderImageURL,
	}
}

// Routes returns the chi router for the tracking surface.  ratePerMin
// bounds tracking requests per client IP; 0 disables the limiter.
func (h *Handler) Routes(ratePerMin int) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requestinfo.Enrich)
		if ratePerMin > 0 {
			r.Use(httprate.Limit(ratePerMin, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					metrics.RateLimitedTotal.Inc()
					http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				}),
			))
		}
		r.Get("/t/{token}", h.Redirect)
		r.Get("/img/{token}", h.Image)
	})

	r.Get("/visits", h.Visits)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/healthz", h.Healthz)

	return r
}

/*──────────────────────────── tracking variants ────────────────────────────*/

// Redirect records the visit, then 302s to the validated `next` target
// or the configured default.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	if !h.record(w, r, "redirect") {
		return
	}
	target := sanitizeTarget(r.URL.Query().Get("next"), h.defaultTarget)
	http.Redirect(w, r, target, http.StatusFound)
}

// Image records the visit, then renders the page embedding the
// validated `src` image or the configured placeholder.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	if !h.record(w, r, "image") {
		return
	}
	imageURL := sanitizeTarget(r.URL.Query().Get("src"), h.placeholderImage)
	if err := view.Render(w, "image_page.html", map[string]any{"ImageURL": imageURL}); err != nil {
		zap.S().Errorw("image page render failed", "err", err)
	}
}

// record runs the shared pipeline and reports whether the caller may
// write its response.  On a storage failure the 500 has already been
// sent.
func (h *Handler) record(w http.ResponseWriter, r *http.Request, variant string) bool {
	token := chi.URLParam(r, "token")

	var ip, rawUA string
	if info := requestinfo.FromContext(r.Context()); info != nil {
		ip, rawUA = info.IP, info.RawUA
	} else {
		// Enrich did not run (direct handler tests); resolve inline.
		ip, rawUA = requestinfo.ClientIP(r), r.UserAgent()
	}

	if _, err := h.recorder.Record(r.Context(), token, ip, rawUA); err != nil {
		metrics.VisitStoreErrorsTotal.Inc()
		zap.S().Errorw("visit append failed", "token", token, "err", err)
		http.Error(w, "visit store unavailable", http.StatusInternalServerError)
		return false
	}

	metrics.VisitsTotal.WithLabelValues(variant).Inc()
	return true
}

/*──────────────────────────── diagnostics ──────────────────────────────────*/

// Visits returns the full stored collection as JSON.
func (h *Handler) Visits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.store.All(r.Context())
	if err != nil {
		zap.S().Errorw("visit load failed", "err", err)
		http.Error(w, "visit store unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(visits); err != nil {
		zap.S().Errorw("visits encode failed", "err", err)
	}
}

// Dashboard renders the collection as an HTML table.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	visits, err := h.store.All(r.Context())
	if err != nil {
		zap.S().Errorw("visit load failed", "err", err)
		http.Error(w, "visit store unavailable", http.StatusInternalServerError)
		return
	}

	if err := view.Render(w, "dashboard.html", map[string]any{"Visits": visits}); err != nil {
		zap.S().Errorw("dashboard render failed", "err", err)
	}
}

// Healthz answers liveness probes.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(`{"status":"ok"}`))
}

/*──────────────────────────── target validation ────────────────────────────*/

// sanitizeTarget returns raw when it is an absolute http or https URL,
// and fallback otherwise.  Rejecting everything else closes the open
// redirect a bare pass-through would create.
func sanitizeTarget(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		zap.S().Debugw("target rejected", "target", raw)
		return fallback
	}
	return raw
}
