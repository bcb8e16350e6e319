package fdexpect

import (
	"errors"
	"fmt"
	"sync"
)

// Session drives a character stream the way an operator at a console would: wait for output, then type input.
// It borrows the descriptor it is given and never closes it. Operations on a Session are serialized, but a
// descriptor should not be shared between multiple Sessions.
type Session struct {
	fd         int
	descriptor Descriptor
	poller     poller
	sink       *outputSink
	ops        *fdOps
	opts       *Opts
	transcript []byte
	mutex      sync.Mutex
	closed     bool
	closeOnce  sync.Once
	closeErr   error
}

// New binds a Session to the given descriptor. The log file, if configured, is created here and stays open until
// Close is called.
func New(d Descriptor, opts ...SetOpt) (*Session, error) {
	return newSession(d, newFDOps(), opts...)
}

func newSession(d Descriptor, ops *fdOps, opts ...SetOpt) (*Session, error) {
	if d == nil {
		return nil, errors.New("descriptor cannot be nil")
	}

	optv := NewOpts()
	for _, setOpt := range opts {
		if err := setOpt(optv); err != nil {
			return nil, fmt.Errorf("could not set option: %w", err)
		}
	}

	fd := int(d.Fd())
	p, err := ops.newPoller(fd)
	if err != nil {
		return nil, fmt.Errorf("could not create poller for descriptor %d: %w", fd, err)
	}

	sink, err := newOutputSink(optv.LogPath, optv.Echo, optv.Quiet, optv.Logger)
	if err != nil {
		_ = p.close()
		return nil, fmt.Errorf("could not create output sink: %w", err)
	}

	optv.Logger.Printf("session created for descriptor %d", fd)

	return &Session{
		fd:         fd,
		descriptor: d,
		poller:     p,
		sink:       sink,
		ops:        ops,
		opts:       optv,
		transcript: []byte{},
	}, nil
}

// Descriptor returns the descriptor the Session was created with
func (s *Session) Descriptor() Descriptor {
	return s.descriptor
}

// Output returns everything received from the descriptor since the Session was created
func (s *Session) Output() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return string(s.transcript)
}

// SetErrorHandler replaces the session wide ErrorHandler. It waits for a running call to return.
func (s *Session) SetErrorHandler(handler ErrorHandler) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.opts.ErrorHandler = handler
}

// Close flushes and closes the log and releases the poller. The descriptor is left open.
// Calling Close more than once is safe, the same error is returned each time.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		s.closed = true

		s.opts.Logger.Println("closing session")
		defer s.opts.Logger.Println("closed session")

		var errs []error
		if err := s.sink.close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close output sink: %w", err))
		}
		if err := s.poller.close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close poller: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// errorHandler hands a failed call's error to the configured ErrorHandler. It must not run while the mutex is held
// as handlers are free to inspect the Session.
func (s *Session) errorHandler(rerr *error, opts *ExpectOpts) {
	err := *rerr
	if err == nil {
		return
	}

	s.mutex.Lock()
	handler := s.opts.ErrorHandler
	s.mutex.Unlock()
	if opts != nil && opts.ErrorHandler != nil {
		handler = opts.ErrorHandler
	}
	*rerr = handler(s, err)
}
