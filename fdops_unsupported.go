//go:build !unix

package fdexpect

import "time"

type fdOps struct {
	read         func(fd int, p []byte) (int, error)
	write        func(fd int, p []byte) (int, error)
	newPoller    func(fd int) (poller, error)
	waitWritable func(fd int, max time.Duration) error
}

func newFDOps() *fdOps {
	unsupported := func(int, []byte) (int, error) { return 0, ErrUnsupportedPlatform }
	return &fdOps{
		read:         unsupported,
		write:        unsupported,
		newPoller:    func(int) (poller, error) { return nil, ErrUnsupportedPlatform },
		waitWritable: func(int, time.Duration) error { return ErrUnsupportedPlatform },
	}
}

func isTransient(err error) bool {
	return false
}
