// internal/visit/record.go
//
// The visit record.
//
// Context
// -------
// One Record is appended per tracked hit.  Optional fields are pointers
// so an absent value serializes as JSON null rather than a zero value
// or a dropped key; the dashboard and the /visits API both distinguish
// "no geo data" from "empty string".  Records are immutable once
// appended—nothing in the pipeline updates or deletes them.
//
// Invariants
// ----------
//   - Browser and OS are always members of the closed ua category sets,
//     never empty.
//   - GoogleMapsURL is present iff both coordinates were numeric in the
//     enrichment result (geo.MapURL owns that rule).
//
// Notes
// -----
//   - The db tags feed the sqlx store; the json tags feed both the file
//     store and the /visits API, so the on-disk file and the API output
//     share one shape.
//   - Oxford commas, two spaces after periods.
package visit

import "time"

// Record describes a single tracked request.
type Record struct {
	Time          time.Time `json:"time"            db:"time"`
	IP            *string   `json:"ip"              db:"ip"`
	Country       *string   `json:"country"         db:"country"`
	Region        *string   `json:"region"          db:"region"`
	City          *string   `json:"city"            db:"city"`
	Lat           *float64  `json:"lat"             db:"lat"`
	Lon           *float64  `json:"lon"             db:"lon"`
	ISP           *string   `json:"isp"             db:"isp"`
	Token         string    `json:"token"           db:"token"`
	UserAgent     *string   `json:"user_agent"      db:"user_agent"`
	Browser       string    `json:"browser"         db:"browser"`
	OS            string    `json:"os"              db:"os"`
	GoogleMapsURL *string   `json:"google_maps_url" db:"google_maps_url"`
}
