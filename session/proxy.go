package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Aurzex/NyanTheme/log"
	"github.com/Aurzex/NyanTheme/rules"
	"github.com/Aurzex/NyanTheme/stream"
)

// State tracks where the proxy loop is in its lifecycle.
type State int

const (
	StateStarting State = iota
	StateRunning
	// StateDraining means the child has exited; the pending partial unit is
	// flushed before the loop terminates. Never skipped while bytes remain.
	StateDraining
	StateTerminated
)

const (
	// idleFlushTimeout bounds how long a promptless partial line waits
	// before being forwarded anyway.
	idleFlushTimeout = stream.IdleFlushTimeout * time.Millisecond

	// killGraceTimeout is how long a forwarded terminate signal may go
	// unanswered before the child is killed outright.
	killGraceTimeout = 5 * time.Second

	readBufferSize = 4096
)

// Proxy shuttles bytes between the real terminal and a session's pty master.
// The input leg is verbatim; the output leg runs through the assembler and
// the rule cascade. Both legs make progress independently.
type Proxy struct {
	sess *Session
	set  *rules.RuleSet
	asm  *stream.Assembler

	stdin  *os.File
	stdout *os.File

	state State
}

// NewProxy wires a proxy to the real terminal's stdio.
func NewProxy(sess *Session, set *rules.RuleSet) *Proxy {
	return &Proxy{
		sess:   sess,
		set:    set,
		asm:    stream.NewAssembler(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// State returns the loop's current lifecycle state.
func (p *Proxy) State() State {
	return p.state
}

// Run drives both legs until the child exits or a leg fails, then flushes
// the pending partial unit, restores the terminal, and returns the child's
// exit code. A fatal I/O error is returned alongside exit code 1.
func (p *Proxy) Run() (int, error) {
	p.state = StateStarting

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Raw mode so keystrokes reach the child unbuffered; line editing and
	// echo belong to the child's pty now.
	if term.IsTerminal(int(p.stdin.Fd())) {
		oldState, err := term.MakeRaw(int(p.stdin.Fd()))
		if err != nil {
			return 1, fmt.Errorf("failed to set terminal raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(int(p.stdin.Fd()), oldState)
		}()
	}

	go p.handleResize(ctx)
	go p.forwardSignals(ctx)

	// Input leg: real stdin -> pty master, untouched.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := p.stdin.Read(buf)
			if n > 0 {
				log.Stats().BytesIn.Add(int64(n))
				if werr := writeAll(p.sess, buf[:n]); werr != nil {
					log.ErrorLog.Printf("input leg write failed: %v", werr)
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					log.ErrorLog.Printf("input leg read failed: %v", err)
				}
				return
			}
		}
	}()

	// Output leg reader: pty master -> chunk channel. Closed on EOF; a
	// fatal read error is left in readErr first.
	chunks := make(chan []byte, 1)
	var readErr error
	go func() {
		defer close(chunks)
		buf := make([]byte, readBufferSize)
		for {
			n, err := p.sess.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !isPTYClosed(err) {
					readErr = err
				}
				return
			}
		}
	}()

	p.state = StateRunning

	idle := time.NewTimer(idleFlushTimeout)
	if !idle.Stop() {
		<-idle.C
	}
	armed := false
	disarm := func() {
		if armed && !idle.Stop() {
			<-idle.C
		}
		armed = false
	}

	var fatal error
loop:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				break loop
			}
			for _, unit := range p.asm.Feed(chunk) {
				if err := p.emit(unit); err != nil {
					fatal = err
					break loop
				}
			}
			if p.asm.Pending() {
				// The timeout runs from the first byte of the partial
				// line; extending it doesn't push the deadline out.
				if !armed {
					idle.Reset(idleFlushTimeout)
					armed = true
				}
			} else {
				disarm()
			}
		case <-idle.C:
			armed = false
			if unit, ok := p.asm.Flush(false); ok {
				log.Stats().IdleFlushes.Add(1)
				if err := p.emit(unit); err != nil {
					fatal = err
					break loop
				}
			}
			if p.asm.Pending() {
				// Withheld an incomplete codepoint; try again shortly.
				idle.Reset(idleFlushTimeout)
				armed = true
			}
		}
	}
	disarm()

	// Child exited or a leg failed: flush whatever is still buffered so no
	// output is lost, then stop the helper goroutines.
	p.state = StateDraining
	if unit, ok := p.asm.Flush(true); ok {
		if err := p.emit(unit); err != nil && fatal == nil {
			fatal = err
		}
	}
	cancel()
	p.state = StateTerminated

	if fatal == nil {
		fatal = readErr
	}
	if fatal != nil {
		return 1, fmt.Errorf("proxy loop failed: %w", fatal)
	}

	return p.sess.Wait()
}

// emit rewrites one unit and forwards it to the real stdout in order.
func (p *Proxy) emit(unit stream.Unit) error {
	log.Stats().UnitsTotal.Add(1)

	out := p.set.Apply(unit.Data, p.sess.Command())
	if !bytes.Equal(out, unit.Data) {
		log.Stats().UnitsRewritten.Add(1)
	}

	log.Stats().BytesOut.Add(int64(len(out)))
	if err := writeAll(p.stdout, out); err != nil {
		return fmt.Errorf("output leg write failed: %w", err)
	}
	return nil
}

// forwardSignals relays interrupt/terminate to the child so its own signal
// handling stays in charge. If the child ignores a terminate for longer than
// the grace period, it is killed so the wrapper can't hang forever.
func (p *Proxy) forwardSignals(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			log.InfoLog.Printf("forwarding %v to child pid %d", sig, p.sess.Pid())
			if err := p.sess.Signal(sig); err != nil {
				log.WarningLog.Printf("failed to forward %v: %v", sig, err)
			}
			if sig == syscall.SIGTERM {
				time.AfterFunc(killGraceTimeout, func() {
					select {
					case <-ctx.Done():
						// Child already exited.
					default:
						log.WarningLog.Printf("child ignored %v, killing", sig)
						_ = p.sess.Kill()
					}
				})
			}
		}
	}
}

// writeAll retries short writes; terminal writers may accept partial buffers
// under backpressure.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// isPTYClosed reports whether a pty master read error means the child side
// is gone. Linux returns EIO from the master once the slave closes.
func isPTYClosed(err error) bool {
	if err == io.EOF {
		return true
	}
	return strings.Contains(err.Error(), "input/output error")
}
