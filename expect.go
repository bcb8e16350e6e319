package fdexpect

import (
	"fmt"
	"io"
	"time"
)

// Expect reads from the descriptor one byte at a time until the received output ends with pattern, and returns
// everything received during the call followed by a newline.
// Bytes are consumed one at a time so that nothing past the match is read, whatever comes next is left for the
// following call.
// If the pattern is not seen before the timeout expires the returned error wraps TimeoutError, if the descriptor
// can no longer be read from it wraps the read error. In both cases it is an *ExpectError holding the partial output.
func (s *Session) Expect(pattern string, opts ...SetExpectOpt) (_ string, rerr error) {
	opts = append([]SetExpectOpt{OptExpectTimeout(s.opts.DefaultTimeout)}, opts...)
	expectOpts, err := NewExpectOpts(opts...)
	defer s.errorHandler(&rerr, expectOpts)
	if err != nil {
		return "", fmt.Errorf("could not create expect options: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	s.opts.Logger.Printf("Expect: %q\n", pattern)
	defer func() {
		s.opts.Logger.Printf("Expect result: %s", unwrapErrorMessage(rerr))
	}()

	// Flush on every way out, including read failures, so the log is complete by the time the caller sees the result
	defer func() {
		if err := s.sink.flush(); err != nil {
			s.opts.Logger.Printf("could not flush output: %v", err)
			if rerr == nil {
				rerr = err
			}
		}
	}()

	return s.expect(newMatcher(pattern), expectOpts)
}

func (s *Session) expect(m *matcher, opts *ExpectOpts) (string, error) {
	start := time.Now()
	fail := func(err error) error {
		return &ExpectError{
			Pattern: string(m.pattern),
			Partial: string(m.bytes()),
			Elapsed: time.Since(start),
			err:     err,
		}
	}

	buf := make([]byte, 1)
	for opts.NoTimeout || time.Since(start) < opts.Timeout {
		wait := s.opts.PollInterval
		if !opts.NoTimeout {
			wait = min(wait, opts.Timeout-time.Since(start))
		}

		ready, err := s.poller.wait(wait)
		if err != nil {
			return "", fail(fmt.Errorf("could not wait for descriptor: %w", err))
		}
		if !ready {
			continue
		}

		n, err := s.ops.read(s.fd, buf)
		if err != nil {
			if isTransient(err) {
				s.opts.Logger.Printf("transient read error, retrying: %v", err)
				continue
			}
			return "", fail(fmt.Errorf("could not read from descriptor: %w", err))
		}
		if n == 0 {
			return "", fail(fmt.Errorf("could not read from descriptor: %w", io.EOF))
		}

		s.transcript = append(s.transcript, buf[0])
		if err := s.sink.record(buf); err != nil {
			return "", fail(err)
		}
		s.sink.echo(buf)

		if m.feed(buf[0]) {
			out := append(m.bytes(), '\n')
			return string(out), nil
		}
	}

	return "", fail(fmt.Errorf("after %s: %w", opts.Timeout, TimeoutError))
}
