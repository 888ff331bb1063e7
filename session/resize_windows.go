//go:build windows

package session

import "context"

// handleResize is a no-op on Windows; there is no SIGWINCH equivalent and
// ptys are unsupported there anyway.
func (p *Proxy) handleResize(ctx context.Context) {}
