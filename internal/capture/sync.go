package capture

import (
	"time"

	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
)

// SyncBaseTime returns the instant the capture clock starts from. Auto mode
// rounds now down to the minute and adds the event's AUTO_SYNC_DELAY minutes,
// so every device started within the same minute agrees. Manual mode rounds
// down to the second and adds MANUAL_SYNC_DELAY seconds.
func SyncBaseTime(now time.Time, mode string, e eventconf.Event) time.Time {
	if mode == config.SyncAuto {
		return now.Truncate(time.Minute).Add(time.Duration(e.AutoSyncDelay) * time.Minute)
	}
	return now.Truncate(time.Second).Add(time.Duration(e.ManualSyncDelay) * time.Second)
}

// Clock measures elapsed milliseconds from a base time.
type Clock struct {
	Base time.Time
	Now  func() time.Time
}

// Elapsed returns milliseconds since Base; negative before the start.
func (c Clock) Elapsed() int64 {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Sub(c.Base).Milliseconds()
}

// Started reports whether Base has been reached.
func (c Clock) Started() bool {
	return c.Elapsed() >= 0
}
