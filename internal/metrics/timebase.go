package metrics

import "time"

// TimeBase anchors rate computations to the system boot time, which does not
// depend on any single process.
type TimeBase struct {
	boot time.Time
	now  func() time.Time
}

// NewTimeBase returns a TimeBase for a boot time given in seconds since the epoch.
func NewTimeBase(bootUnix uint64) *TimeBase {
	return &TimeBase{
		boot: time.Unix(int64(bootUnix), 0),
		now:  time.Now,
	}
}

// BootTime returns the boot instant.
func (t *TimeBase) BootTime() time.Time {
	return t.boot
}

// Uptime returns the seconds elapsed since boot. A clock that reads earlier than
// the boot time yields 0.
func (t *TimeBase) Uptime() float64 {
	up := t.now().Sub(t.boot).Seconds()
	if up < 0 {
		return 0
	}
	return up
}

// UptimeDuration is Uptime truncated to whole seconds.
func (t *TimeBase) UptimeDuration() time.Duration {
	return time.Duration(t.Uptime()) * time.Second
}
