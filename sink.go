package fdexpect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// outputSink duplicates everything received from or sent to the descriptor into a persistent log, and optionally
// echoes received output to an interactive console.
// The log receives the raw bytes untouched and its failures are reported. The echo is best-effort: incomplete UTF-8
// sequences are held back until they complete, invalid bytes are displayed as U+FFFD, and a console that fails is
// logged and then no longer written to.
type outputSink struct {
	logFile *os.File
	log     *bufio.Writer
	console *bufio.Writer
	echoer  *transform.Writer
	quiet   bool
	logger  *log.Logger
	once    sync.Once
}

func newOutputSink(logPath string, echo io.Writer, quiet bool, logger *log.Logger) (*outputSink, error) {
	if logger == nil {
		logger = VoidLogger
	}
	s := &outputSink{quiet: quiet, logger: logger}

	var logTarget io.Writer = io.Discard
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("could not create log file: %w", err)
		}
		s.logFile = f
		logTarget = f
	}
	s.log = bufio.NewWriter(logTarget)

	if !quiet {
		if echo == nil {
			echo = os.Stdout
		}
		s.console = bufio.NewWriter(echo)
		s.echoer = transform.NewWriter(s.console, unicode.UTF8.NewDecoder())
	}

	return s, nil
}

func (s *outputSink) record(p []byte) error {
	if _, err := s.log.Write(p); err != nil {
		return fmt.Errorf("could not write to log: %w", err)
	}
	return nil
}

func (s *outputSink) echo(p []byte) {
	if s.quiet {
		return
	}
	if _, err := s.echoer.Write(p); err != nil {
		s.disableEcho(err)
	}
}

// disableEcho stops echoing after the console failed, a bufio.Writer keeps returning its first error forever
func (s *outputSink) disableEcho(err error) {
	s.logger.Printf("could not write to console, echo disabled: %v", err)
	s.quiet = true
}

// flush flushes the log and the console, only a log failure is returned
func (s *outputSink) flush() error {
	if !s.quiet {
		if err := s.console.Flush(); err != nil {
			s.disableEcho(err)
		}
	}
	if err := s.log.Flush(); err != nil {
		return fmt.Errorf("could not flush log: %w", err)
	}
	return nil
}

func (s *outputSink) close() (rerr error) {
	s.once.Do(func() {
		if !s.quiet {
			if err := s.echoer.Close(); err != nil {
				s.disableEcho(err)
			}
		}
		var errs []error
		if err := s.flush(); err != nil {
			errs = append(errs, err)
		}
		if s.logFile != nil {
			if err := s.logFile.Close(); err != nil {
				errs = append(errs, fmt.Errorf("could not close log file: %w", err))
			}
		}
		rerr = errors.Join(errs...)
	})
	return rerr
}
