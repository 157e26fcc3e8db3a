package cli

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats an elapsed time to a human readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs = secs - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatTimestamp formats a position in seconds as m:ss.s
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		return "-"
	}
	mins := int(sec / 60)
	return fmt.Sprintf("%d:%04.1f", mins, sec-float64(mins*60))
}
