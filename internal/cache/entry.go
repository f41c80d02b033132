package cache

import (
	"fmt"
	"time"

	"github.com/rshade/gss-search/internal/locator"
)

// Duration formatting constants.
const (
	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24
)

// EntryInfo describes one stored sheet without decoding it.
type EntryInfo struct {
	Locator locator.Locator
	Path    string
	Size    int64
	ModTime time.Time
}

// Age returns the duration since the entry was last written.
func (e EntryInfo) Age() time.Duration {
	return time.Since(e.ModTime)
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "45s", "30m", "1h", "5h30m", "2d3h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
