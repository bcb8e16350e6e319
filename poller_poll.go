//go:build unix

package fdexpect

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

type pollPoller struct {
	fds []unix.PollFd
}

func newPollPoller(fd int) *pollPoller {
	return &pollPoller{
		fds: []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}},
	}
}

func (p *pollPoller) wait(max time.Duration) (bool, error) {
	p.fds[0].Revents = 0
	n, err := unix.Poll(p.fds, durationToMillis(max))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	// Hangups and errors count as ready so that the following read surfaces them
	return p.fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0, nil
}

func (p *pollPoller) close() error {
	return nil
}

// waitWritable blocks until fd can accept more data or max has elapsed
func waitWritable(fd int, max time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	if _, err := unix.Poll(fds, durationToMillis(max)); err != nil && !errors.Is(err, unix.EINTR) {
		return err
	}
	return nil
}
