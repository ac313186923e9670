// internal/ua/ua.go
//
// Coarse User-Agent classification.
//
// Context
// -------
// Every visit record stores a browser and OS category for dashboard
// display.  The categories form a small closed set, so rather than
// exposing a full parser's enum soup we classify with an ordered list
// of substring rules over the lower-cased header.  Order matters:
// Chromium UAs advertise "Safari", Edge advertises "Chrome", and so
// on, so the first matching rule wins.
//
// The rule tables are package data, not control flow.  Tests enumerate
// them one by one, and adding a category is a one-line change.
//
// Notes
// -----
//   - Classify is pure and total; it never fails and never returns an
//     empty category.
//   - An absent header is "Unknown"/"Unknown", which is distinct from
//     "Other" (a header that matched no rule).
//   - Oxford commas, two spaces after periods.
package ua

import "strings"

//
// Category constants (closed sets)
//

const (
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserOther   = "Other"

	OSWindows = "Windows"
	OSAndroid = "Android"
	OSiOS     = "iOS"
	OSMacOS   = "macOS"
	OSLinux   = "Linux"
	OSOther   = "Other"

	// Unknown is returned for both fields when the header is absent.
	Unknown = "Unknown"
)

// Class is the coarse category pair persisted with each visit.
type Class struct {
	Browser string
	OS      string
}

//
// Rule tables
//

// Rule pairs a category with a predicate over the lower-cased header.
type Rule struct {
	Category string
	Match    func(ua string) bool
}

func contains(sub string) func(string) bool {
	return func(ua string) bool { return strings.Contains(ua, sub) }
}

func anyOf(subs ...string) func(string) bool {
	return func(ua string) bool {
		for _, s := range subs {
			if strings.Contains(ua, s) {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...func(string) bool) func(string) bool {
	return func(ua string) bool {
		for _, p := range preds {
			if !p(ua) {
				return false
			}
		}
		return true
	}
}

func not(pred func(string) bool) func(string) bool {
	return func(ua string) bool { return !pred(ua) }
}

// BrowserRules is evaluated top to bottom; first match wins.  "edg"
// must stay first because Edge UAs also contain "chrome" and "safari",
// and the Chrome rule must exclude "edge" for the same reason.
var BrowserRules = []Rule{
	{BrowserEdge, contains("edg")},
	{BrowserOpera, anyOf("opr", "opera")},
	{BrowserChrome, allOf(contains("chrome"), contains("safari"), not(contains("edge")))},
	{BrowserFirefox, contains("firefox")},
	{BrowserSafari, allOf(contains("safari"), not(contains("chrome")))},
}

// OSRules is independent of BrowserRules; same first-match semantics.
var OSRules = []Rule{
	{OSWindows, contains("windows")},
	{OSAndroid, contains("android")},
	{OSiOS, anyOf("iphone", "ipad", "ios")},
	{OSMacOS, anyOf("mac os x", "macintosh")},
	{OSLinux, contains("linux")},
}

//
// Public API
//

// Classify maps a raw User-Agent header to its category pair.  The
// empty string (header absent) classifies as Unknown/Unknown.
func Classify(raw string) Class {
	if raw == "" {
		return Class{Browser: Unknown, OS: Unknown}
	}
	lower := strings.ToLower(raw)
	return Class{
		Browser: firstMatch(BrowserRules, lower, BrowserOther),
		OS:      firstMatch(OSRules, lower, OSOther),
	}
}

// firstMatch walks rules in order and returns the first hit, or fallback.
func firstMatch(rules []Rule, ua, fallback string) string {
	for _, r := range rules {
		if r.Match(ua) {
			return r.Category
		}
	}
	return fallback
}
