//go:build !windows

package session

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// handleResize keeps the pty's size in sync with the real terminal.
func (p *Proxy) handleResize(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGWINCH)
	defer signal.Stop(ch)

	// Apply the initial size immediately, BEFORE waiting for signals.
	p.applySize()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			p.applySize()
		}
	}
}

func (p *Proxy) applySize() {
	width, height, err := term.GetSize(int(p.stdin.Fd()))
	if err != nil {
		// Not a terminal (piped stdin); leave the pty's default size.
		return
	}
	_ = p.sess.Resize(uint16(height), uint16(width))
}
