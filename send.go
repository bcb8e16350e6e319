package fdexpect

import (
	"fmt"
	"io"
)

const lineSep = "\n"

// Send writes payload to the descriptor and records it in the log.
// A nil payload is treated as a mistake on the caller's part rather than an error: a notice is logged and nothing
// is written.
func (s *Session) Send(payload []byte) (rerr error) {
	defer s.errorHandler(&rerr, nil)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrClosed
	}

	if payload == nil {
		s.opts.Logger.Println("Send: did not get a payload, nothing was sent")
		return nil
	}

	s.opts.Logger.Printf("Send: %q\n", payload)
	if err := s.writeAll(payload); err != nil {
		return fmt.Errorf("could not write to descriptor: %w", err)
	}

	if err := s.sink.record(payload); err != nil {
		return err
	}
	return s.sink.flush()
}

// SendLine sends text followed by a newline, as if a user typed it and hit enter. An empty text sends just the
// newline.
func (s *Session) SendLine(text string) error {
	s.opts.Logger.Printf("Running command: %q", text)
	return s.Send([]byte(text + lineSep))
}

func (s *Session) writeAll(p []byte) error {
	for len(p) > 0 {
		n, err := s.ops.write(s.fd, p)
		if n > 0 {
			p = p[n:]
		}
		if n <= 0 && err == nil {
			return io.ErrShortWrite
		}
		if err != nil {
			if !isTransient(err) {
				return err
			}
			if err := s.ops.waitWritable(s.fd, s.opts.PollInterval); err != nil {
				return fmt.Errorf("could not wait for descriptor to become writable: %w", err)
			}
		}
	}
	return nil
}
