// Package session owns the pseudo-terminal side of the wrapper: spawning the
// child attached to a pty pair and proxying bytes between the real terminal
// and the pty master while the rewrite pass runs on the output leg.
package session

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/Aurzex/NyanTheme/rules"
)

// Session is one child process attached to a pty pair. The pty master and
// the process handle are owned exclusively by the proxy loop.
type Session struct {
	cmd     *exec.Cmd
	ptmx    *os.File
	command string // normalized name rules filter on

	waitOnce sync.Once
	waitCode int
	waitErr  error

	closeOnce sync.Once
}

// Start spawns command attached to the slave side of a fresh pty pair and
// returns the session holding the master side. The slave handle is already
// closed in this process when Start returns.
func Start(command string, args []string) (*Session, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = os.Environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s under a pty: %w", command, err)
	}

	return &Session{
		cmd:     cmd,
		ptmx:    ptmx,
		command: rules.NormalizeCommand(command),
	}, nil
}

// Command returns the normalized active command name for rule filtering.
func (s *Session) Command() string {
	return s.command
}

// Pid returns the child's process id.
func (s *Session) Pid() int {
	return s.cmd.Process.Pid
}

// Read reads child output from the pty master.
func (s *Session) Read(p []byte) (int, error) {
	return s.ptmx.Read(p)
}

// Write writes input bytes to the pty master, verbatim.
func (s *Session) Write(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// Resize sets the pty's window size so the child sees the real terminal's
// dimensions.
func (s *Session) Resize(rows, cols uint16) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// Signal forwards a signal to the child process.
func (s *Session) Signal(sig os.Signal) error {
	return s.cmd.Process.Signal(sig)
}

// Kill force-terminates the child. Used as the grace-period fallback when a
// forwarded terminate signal goes unanswered.
func (s *Session) Kill() error {
	return s.cmd.Process.Kill()
}

// Wait reaps the child and returns its exit code. Safe to call more than
// once; the first result is cached. A non-zero child exit is not an error.
// A signal-killed child maps to 128+signal, the shell convention, instead
// of the -1 the runtime reports.
func (s *Session) Wait() (int, error) {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		if err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				s.waitErr = fmt.Errorf("failed to wait for child: %w", err)
				s.waitCode = 1
				return
			}
		}
		s.waitCode = s.cmd.ProcessState.ExitCode()
		if s.waitCode == -1 {
			if ws, ok := s.cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				s.waitCode = 128 + int(ws.Signal())
			}
		}
	})
	return s.waitCode, s.waitErr
}

// Close releases the pty master and makes sure the child is reaped, even on
// fatal proxy paths where Wait was never reached. Idempotent.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.ptmx.Close()
		// No-op if the child already exited; Wait is cached.
		_ = s.cmd.Process.Kill()
		_, _ = s.Wait()
	})
	return err
}
