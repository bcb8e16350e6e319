package fdexpect

import "time"

// DefaultPollInterval is the longest a single readiness wait may block, regardless of how much time is left on the
// expectation. Keeping waits short keeps the elapsed time bookkeeping in Expect accurate.
const DefaultPollInterval = time.Second

// poller waits for a descriptor to become readable. The descriptor is registered once when the poller is created
// and that registration is reused for every wait.
type poller interface {
	wait(max time.Duration) (ready bool, err error)
	close() error
}

// durationToMillis converts d to a poll timeout, rounding up so that a sub-millisecond remainder does not turn into
// a busy loop of zero-length waits
func durationToMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
