// internal/ua/detail.go
//
// Supplementary UA attributes via github.com/avct/uasurfer.
//
// The visit record itself only carries the coarse Class categories, but
// the enrichment middleware also wants a device class and a bot flag
// for logging and metrics.  This wrapper isolates the third-party
// uasurfer API so the rest of the codebase never sees its enums; if we
// swap parsers again, only this file changes.
package ua

import surfer "github.com/avct/uasurfer"

// Detail carries attributes that are observed but not persisted.
//
// Device is one of "Desktop", "Phone", "Tablet", "Console", "Wearable",
// "TV", "Bot", or "Unknown".
type Detail struct {
	Device string
	Bot    bool
}

// Inspect parses raw with uasurfer and returns the supplementary
// attributes.  The zero Detail is returned for an empty header.
func Inspect(raw string) Detail {
	if raw == "" {
		return Detail{Device: "Unknown"}
	}
	u := surfer.Parse(raw)
	return Detail{
		Device: deviceString(u.DeviceType),
		Bot:    u.IsBot(),
	}
}

// deviceString maps uasurfer.DeviceType to a display string.
func deviceString(dt surfer.DeviceType) string {
	switch dt {
	case surfer.DeviceComputer:
		return "Desktop"
	case surfer.DevicePhone:
		return "Phone"
	case surfer.DeviceTablet:
		return "Tablet"
	case surfer.DeviceConsole:
		return "Console"
	case surfer.DeviceWearable:
		return "Wearable"
	case surfer.DeviceTV:
		return "TV"
	case surfer.DeviceBot:
		return "Bot"
	default:
		return "Unknown"
	}
}
