//go:build unix

package fdexpect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Transcript_Log(t *testing.T) {
	local, peer := newSocketPair(t)
	logPath := filepath.Join(t.TempDir(), "session.log")
	console := &syncBuffer{}
	s, err := New(local, OptLogPath(logPath), OptEcho(console), OptLogger(newTestLogger(t)))
	require.NoError(t, err)

	_, err = peer.Write([]byte("name? "))
	require.NoError(t, err)
	_, err = s.Expect("? ", OptExpectTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "name? ", console.String(), "echo is flushed when expect returns")

	require.NoError(t, s.SendLine("bob"))
	assert.Equal(t, "name? ", console.String(), "sent input is logged but not echoed")

	require.NoError(t, s.Close())
	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "name? bob\n", string(logged))
}

func Test_Quiet(t *testing.T) {
	local, peer := newSocketPair(t)
	logPath := filepath.Join(t.TempDir(), "session.log")
	console := &syncBuffer{}
	s := newTestSession(t, local, OptLogPath(logPath), OptEcho(console), OptQuiet(true))

	_, err := peer.Write([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Expect("secret", OptExpectTimeout(time.Second))
	require.NoError(t, err)

	assert.Empty(t, console.String())
	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(logged))
}

func Test_BrokenConsole(t *testing.T) {
	local, peer := newSocketPair(t)
	logPath := filepath.Join(t.TempDir(), "session.log")
	s := newTestSession(t, local, OptLogPath(logPath), OptQuiet(false), OptEcho(brokenConsole{}))

	_, err := peer.Write([]byte("login: "))
	require.NoError(t, err)
	got, err := s.Expect("login: ", OptExpectTimeout(time.Second))
	require.NoError(t, err, "a console that cannot be written to must not fail a match")
	assert.Equal(t, "login: \n", got)

	require.NoError(t, s.SendLine("user"))
	buf := make([]byte, len("user\n"))
	_, err = io.ReadFull(peer, buf)
	require.NoError(t, err)

	_, err = peer.Write([]byte("password: "))
	require.NoError(t, err)
	_, err = s.Expect("password: ", OptExpectTimeout(time.Second))
	require.NoError(t, err, "later calls are unaffected too")

	require.NoError(t, s.Close())
	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "login: user\npassword: ", string(logged))
}

func Test_Close(t *testing.T) {
	local, peer := newSocketPair(t)
	s, err := New(local, OptQuiet(true))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Expect("x", OptExpectTimeout(time.Second))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.Send([]byte("x")), ErrClosed)

	// The descriptor belongs to the caller and is still usable
	_, err = local.Write([]byte("still open"))
	require.NoError(t, err)
	buf := make([]byte, len("still open"))
	_, err = io.ReadFull(peer, buf)
	require.NoError(t, err)
}

func Test_ErrorHandler(t *testing.T) {
	local, _ := newSocketPair(t)
	handled := []error{}
	s := newTestSession(t, local, OptErrorHandler(func(s *Session, err error) error {
		handled = append(handled, err)
		return fmt.Errorf("handled: %w", err)
	}))

	_, err := s.Expect("x", OptExpectTimeout(10*time.Millisecond))
	require.ErrorIs(t, err, TimeoutError)
	require.Contains(t, err.Error(), "handled: ")
	require.Len(t, handled, 1)

	override := errors.New("override")
	_, err = s.Expect("x", OptExpectTimeout(10*time.Millisecond), OptExpectErrorHandler(func(*Session, error) error {
		return override
	}))
	require.Equal(t, override, err)
	require.Len(t, handled, 1, "a per call handler replaces the session handler")

	_, err = s.Expect("x", OptExpectTimeout(-time.Second))
	require.Error(t, err)
	require.Len(t, handled, 2, "invalid options are reported through the handler too")
}

func Test_SetErrorHandler_Concurrent(t *testing.T) {
	local, _ := newSocketPair(t)
	s := newTestSession(t, local)

	var handled atomic.Int32
	handler := func(_ *Session, err error) error {
		handled.Add(1)
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.SetErrorHandler(handler)
		}
	}()
	for i := 0; i < 100; i++ {
		_, err := s.Expect("x", OptExpectTimeout(0))
		require.ErrorIs(t, err, TimeoutError)
	}
	<-done

	before := handled.Load()
	_, err := s.Expect("x", OptExpectTimeout(0))
	require.ErrorIs(t, err, TimeoutError)
	assert.Equal(t, before+1, handled.Load(), "the handler set last is used")
}

func Test_New(t *testing.T) {
	local, _ := newSocketPair(t)

	_, err := New(nil)
	require.Error(t, err)

	_, err = New(local, OptPollInterval(0))
	require.Error(t, err)

	_, err = New(local, OptEcho(nil))
	require.Error(t, err)

	_, err = New(local, OptLogPath(filepath.Join(t.TempDir(), "missing", "log")))
	require.Error(t, err)

	s, err := New(FD(local.Fd()), OptQuiet(true))
	require.NoError(t, err)
	assert.Equal(t, FD(local.Fd()), s.Descriptor())
	require.NoError(t, s.Close())
}

func Test_Pty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	require.NoError(t, err)
	defer ptmx.Close()
	defer tty.Close()

	s := newTestSession(t, ptmx)

	wait := writeChunks(t, tty, peerChunk{[]byte("login: "), 0})
	defer wait()

	got, err := s.Expect("login: ", OptExpectTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "login: \n", got)

	require.NoError(t, s.SendLine("user"))
	buf := make([]byte, 64)
	n, err := tty.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "user\n", string(buf[:n]))
}
