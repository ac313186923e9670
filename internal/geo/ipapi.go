// internal/geo/ipapi.go
//
// HTTP geo provider speaking the ip-api.com JSON protocol.
//
// Context
// -------
// The free endpoint answers GET <endpoint>/<ip>?fields=... with a flat
// JSON object; "status" is "success" or "fail", and "message" carries
// the failure reason.  The fields parameter trims the response to the
// keys the visit record actually stores.  Self-hosted mirrors expose
// the same protocol, so the endpoint is configurable.
//
// The provider returns the decoded object as-is; normalization happens
// in the Enricher so every field stays optional end to end.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ipapiFields keeps responses small and stable across provider updates.
const ipapiFields = "status,message,country,regionName,city,lat,lon,isp"

// IPAPI queries an ip-api-style HTTP endpoint.
type IPAPI struct {
	client   *http.Client
	endpoint string
}

// NewIPAPI returns a provider for the given endpoint, e.g.
// "http://ip-api.com/json".  The client timeout is a backstop; the
// Enricher applies the effective per-lookup deadline via context.
func NewIPAPI(endpoint string) *IPAPI {
	return &IPAPI{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

func (p *IPAPI) Name() string { return "ipapi" }

// Lookup fetches the collaborator map for ip.  Transport errors, non-200
// statuses, undecodable bodies, and "fail" statuses are all returned as
// errors; the caller degrades them uniformly.
func (p *IPAPI) Lookup(ctx context.Context, ip string) (map[string]any, error) {
	lookupURL := fmt.Sprintf("%s/%s?fields=%s", p.endpoint, url.PathEscape(ip), ipapiFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build geo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo endpoint returned status %d", resp.StatusCode)
	}

	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode geo response: %w", err)
	}

	if status, _ := m["status"].(string); status != "success" {
		msg, _ := m["message"].(string)
		return nil, fmt.Errorf("geo lookup failed for %s: %s", ip, msg)
	}
	return m, nil
}
