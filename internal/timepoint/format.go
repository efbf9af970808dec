package timepoint

import "time"

const (
	// TimePattern describes how protocol readers should render timestamps.
	TimePattern = "HH:mm:ss.SSS"
	// TimeZone is the zone timestamps are rendered in.
	TimeZone = "GMT"

	clockLayout = "15:04:05.000"
	emptyClock  = "---"
)

// FormatElapsed renders milliseconds as HH:mm:ss.SSS in UTC, matching
// TimePattern and TimeZone.
func FormatElapsed(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(clockLayout)
}
