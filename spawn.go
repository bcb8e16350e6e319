package fdexpect

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/shirou/gopsutil/v3/process"
)

// Process bonds a command with a pseudo-terminal and a Session reading from it
type Process struct {
	*Session
	cmd       *exec.Cmd
	ptmx      *os.File
	exited    chan struct{}
	exitErr   error
	closeOnce sync.Once
	closeErr  error
}

// Spawn starts cmd on a new pseudo-terminal sized per OptCols and OptRows, and returns a Process whose Session
// interacts with it. Close must be called to release the pty and reap the command.
func Spawn(cmd *exec.Cmd, opts ...SetOpt) (*Process, error) {
	optv := NewOpts()
	for _, setOpt := range opts {
		if err := setOpt(optv); err != nil {
			return nil, fmt.Errorf("could not set option: %w", err)
		}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(optv.Cols), Rows: uint16(optv.Rows)})
	if err != nil {
		return nil, fmt.Errorf("could not start pty: %w", err)
	}

	p := &Process{
		cmd:    cmd,
		ptmx:   ptmx,
		exited: make(chan struct{}),
	}
	go func() {
		defer close(p.exited)
		p.exitErr = cmd.Wait()
	}()

	sess, err := New(ptmx, opts...)
	if err != nil {
		_ = cmd.Process.Kill()
		<-p.exited
		_ = ptmx.Close()
		return nil, fmt.Errorf("could not create session: %w", err)
	}
	p.Session = sess

	return p, nil
}

// Cmd returns the underlying command
func (p *Process) Cmd() *exec.Cmd {
	return p.cmd
}

// ExpectExitCode waits for the command to terminate and checks that it exited with exitCode
func (p *Process) ExpectExitCode(exitCode int, opts ...SetExpectOpt) (rerr error) {
	opts = append([]SetExpectOpt{OptExpectTimeout(p.opts.DefaultTimeout)}, opts...)
	expectOpts, err := NewExpectOpts(opts...)
	defer p.errorHandler(&rerr, expectOpts)
	if err != nil {
		return fmt.Errorf("could not create expect options: %w", err)
	}

	p.opts.Logger.Printf("Expecting exit code %d", exitCode)

	var timeout <-chan time.Time
	if !expectOpts.NoTimeout {
		timer := time.NewTimer(expectOpts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-timeout:
		return fmt.Errorf("after %s: %w", expectOpts.Timeout, TimeoutError)
	case <-p.exited:
	}

	var exitError *exec.ExitError
	if p.exitErr != nil && !errors.As(p.exitErr, &exitError) {
		return fmt.Errorf("cmd wait failed: %w", p.exitErr)
	}

	if got := p.cmd.ProcessState.ExitCode(); got != exitCode {
		return fmt.Errorf("expected exit code %d, got %d", exitCode, got)
	}
	return nil
}

// Close closes the Session, kills whatever is left of the command and its children, and closes the pty
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		if err := p.Session.Close(); err != nil {
			errs = append(errs, err)
		}

		select {
		case <-p.exited:
		default:
			if err := killProcessTree(int32(p.cmd.Process.Pid)); err != nil {
				p.opts.Logger.Printf("could not kill process tree: %v", err)
			}
			<-p.exited
		}

		if err := p.ptmx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close pty: %w", err))
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}

// killProcessTree kills the children of pid depth first, then pid itself
func killProcessTree(pid int32) error {
	proc, err := process.NewProcess(pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("could not find process %d: %w", pid, err)
	}

	children, err := proc.Children()
	if err != nil && !errors.Is(err, process.ErrorNoChildren) {
		return fmt.Errorf("could not list children of %d: %w", pid, err)
	}

	var errs []error
	for _, child := range children {
		if err := killProcessTree(child.Pid); err != nil {
			errs = append(errs, err)
		}
	}

	if err := proc.Kill(); err != nil {
		errs = append(errs, fmt.Errorf("could not kill process %d: %w", pid, err))
	}
	return errors.Join(errs...)
}
