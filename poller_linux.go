//go:build linux

package fdexpect

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type epollPoller struct {
	epfd   int
	events [1]unix.EpollEvent
	once   sync.Once
}

func newPoller(fd int) (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("could not create epoll instance: %w", err)
	}

	event := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		_ = unix.Close(epfd)
		// Regular files can't be watched by epoll, poll(2) reports them as always readable
		if errors.Is(err, unix.EPERM) {
			return newPollPoller(fd), nil
		}
		return nil, fmt.Errorf("could not register descriptor with epoll: %w", err)
	}

	return &epollPoller{epfd: epfd}, nil
}

func (p *epollPoller) wait(max time.Duration) (bool, error) {
	n, err := unix.EpollWait(p.epfd, p.events[:], durationToMillis(max))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	// EPOLLHUP and EPOLLERR are reported even though we only asked for EPOLLIN, either way the next read will tell
	return n > 0, nil
}

func (p *epollPoller) close() (rerr error) {
	p.once.Do(func() {
		rerr = unix.Close(p.epfd)
	})
	return rerr
}
