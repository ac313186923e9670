//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (client IP, coarse user-agent class, device detail, and timestamp).
//  These structs are inert.  They contain no pointers to database
//  handles or large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • internal/ua             (classification + uasurfer detail)
//

package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yanizio/beacon/internal/ua"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// RequestInfo is the per-request metadata bundle assembled once by the
// Enrich middleware and read by the tracking handlers.
type RequestInfo struct {
	IP        string    // resolved client address; "" when unobtainable
	RawUA     string    // entire User-Agent header, may be empty
	UA        ua.Class  // coarse browser/OS categories (closed sets)
	Detail    ua.Detail // device class + bot flag, not persisted
	Timestamp time.Time // UTC arrival time
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//
//  The Enrich middleware stores *RequestInfo inside net/context so that
//  any code holding only http.Request can still retrieve the struct
//  without reparsing headers.
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  -----------------------------
//  Client IP resolution
//  -----------------------------
//

// ClientIP extracts the originating client address for a request.
//
// Precedence: the first hop of X-Forwarded-For (each proxy appends its
// caller, so the left-most entry is the original client), then
// X-Real-Ip, then the host part of RemoteAddr.  The forwarded value is
// stored verbatim after trimming—records keep what the proxy chain
// asserted, even when it does not parse as an address.  A header whose
// first entry trims to nothing (", 10.0.0.1") carries no client claim
// and falls through to the next source.  Returns "" when no source
// yields a value; never fails.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	// RemoteAddr without a port (some test servers, unix sockets).
	return r.RemoteAddr
}
