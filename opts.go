// Copyright 2020 ActiveState Software. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file

package fdexpect

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"testing"
	"time"
)

type ErrorHandler func(*Session, error) error

type Opts struct {
	Logger         *log.Logger
	ErrorHandler   ErrorHandler
	LogPath        string
	Quiet          bool
	Echo           io.Writer
	PollInterval   time.Duration
	DefaultTimeout time.Duration
	Cols           int
	Rows           int
}

var VerboseLogger = log.New(os.Stderr, "fdexpect: ", log.LstdFlags|log.Lshortfile)

var VoidLogger = log.New(voidWriter{}, "", 0)

type SetOpt func(o *Opts) error

const DefaultCols = 140
const DefaultRows = 10

// DefaultTimeout is how long Expect waits for its pattern unless told otherwise
const DefaultTimeout = 30 * time.Second

func NewOpts() *Opts {
	return &Opts{
		Logger:         VoidLogger,
		ErrorHandler:   SilenceErrorHandler(),
		Echo:           os.Stdout,
		PollInterval:   DefaultPollInterval,
		DefaultTimeout: DefaultTimeout,
		Cols:           DefaultCols,
		Rows:           DefaultRows,
	}
}

func SilenceErrorHandler() ErrorHandler {
	return func(_ *Session, err error) error {
		return err
	}
}

// OptLogPath records everything received and sent to the file at path, the file is truncated when the Session is
// created. Without it nothing is recorded.
func OptLogPath(path string) SetOpt {
	return func(o *Opts) error {
		o.LogPath = path
		return nil
	}
}

// OptQuiet suppresses echoing received output to the console, the log is still written
func OptQuiet(v bool) SetOpt {
	return func(o *Opts) error {
		o.Quiet = v
		return nil
	}
}

// OptEcho sets where received output is echoed to, defaults to os.Stdout
func OptEcho(w io.Writer) SetOpt {
	return func(o *Opts) error {
		if w == nil {
			return fmt.Errorf("echo writer cannot be nil, use OptQuiet to disable echo")
		}
		o.Echo = w
		return nil
	}
}

func OptVerboseLogger() SetOpt {
	return OptLogger(VerboseLogger)
}

func OptLogger(logger *log.Logger) SetOpt {
	return func(o *Opts) error {
		o.Logger = logger
		return nil
	}
}

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Write(p []byte) (n int, err error) {
	l.t.Log(string(p))
	return len(p), nil
}

func OptSetTest(t *testing.T) SetOpt {
	return func(o *Opts) error {
		setTest(o, t)
		return nil
	}
}

func OptErrorHandler(handler ErrorHandler) SetOpt {
	return func(o *Opts) error {
		o.ErrorHandler = handler
		return nil
	}
}

func OptTestErrorHandler(t *testing.T) SetOpt {
	return OptErrorHandler(TestErrorHandler(t))
}

func OptSilenceErrorHandler() SetOpt {
	return OptErrorHandler(SilenceErrorHandler())
}

// OptPollInterval caps how long a single readiness wait may block
func OptPollInterval(interval time.Duration) SetOpt {
	return func(o *Opts) error {
		if interval <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", interval)
		}
		o.PollInterval = interval
		return nil
	}
}

// OptDefaultTimeout sets the timeout used by Expect calls that do not specify their own
func OptDefaultTimeout(duration time.Duration) SetOpt {
	return func(o *Opts) error {
		o.DefaultTimeout = duration
		return nil
	}
}

// OptCols sets the number of columns of the pty created by Spawn
func OptCols(cols int) SetOpt {
	return func(o *Opts) error {
		if err := validateDimension("cols", cols); err != nil {
			return err
		}
		o.Cols = cols
		return nil
	}
}

// OptRows sets the number of rows of the pty created by Spawn
func OptRows(rows int) SetOpt {
	return func(o *Opts) error {
		if err := validateDimension("rows", rows); err != nil {
			return err
		}
		o.Rows = rows
		return nil
	}
}

// validateDimension makes sure a pty dimension fits the uint16 of a window size
func validateDimension(name string, v int) error {
	if v <= 0 || v > math.MaxUint16 {
		return fmt.Errorf("%s must be between 1 and %d, got %d", name, math.MaxUint16, v)
	}
	return nil
}

func setTest(o *Opts, t *testing.T) {
	o.Logger = log.New(&testLogger{t}, "fdexpect: ", log.LstdFlags|log.Lshortfile)
	o.ErrorHandler = TestErrorHandler(t)
}

type ExpectOpts struct {
	Timeout      time.Duration
	NoTimeout    bool
	ErrorHandler ErrorHandler
}

type SetExpectOpt func(o *ExpectOpts) error

func NewExpectOpts(opts ...SetExpectOpt) (*ExpectOpts, error) {
	o := &ExpectOpts{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func OptExpectTimeout(timeout time.Duration) SetExpectOpt {
	return func(o *ExpectOpts) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative, got %s", timeout)
		}
		o.Timeout = timeout
		o.NoTimeout = false
		return nil
	}
}

// OptExpectNoTimeout makes Expect wait for as long as it takes
func OptExpectNoTimeout() SetExpectOpt {
	return func(o *ExpectOpts) error {
		o.NoTimeout = true
		return nil
	}
}

func OptExpectErrorHandler(handler ErrorHandler) SetExpectOpt {
	return func(o *ExpectOpts) error {
		o.ErrorHandler = handler
		return nil
	}
}

func OptExpectSilenceErrorHandler() SetExpectOpt {
	return OptExpectErrorHandler(SilenceErrorHandler())
}
