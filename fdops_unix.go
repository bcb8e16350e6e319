//go:build unix

package fdexpect

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// fdOps collects the system calls used by a Session so that tests can substitute them per instance
type fdOps struct {
	read         func(fd int, p []byte) (int, error)
	write        func(fd int, p []byte) (int, error)
	newPoller    func(fd int) (poller, error)
	waitWritable func(fd int, max time.Duration) error
}

func newFDOps() *fdOps {
	return &fdOps{
		read:         unix.Read,
		write:        unix.Write,
		newPoller:    newPoller,
		waitWritable: waitWritable,
	}
}

// isTransient reports whether a read or write error only means "try again later"
func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
