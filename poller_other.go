//go:build unix && !linux

package fdexpect

func newPoller(fd int) (poller, error) {
	return newPollPoller(fd), nil
}
