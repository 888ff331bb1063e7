// Package stream reassembles the raw byte chunks read from a PTY master
// into units the rewrite pass can match against: complete lines, or partial
// lines flushed after an idle period so prompts without a trailing newline
// still reach the terminal promptly.
package stream

import (
	"bytes"
	"unicode/utf8"
)

// IdleFlushTimeout is how long a pending partial line may sit in the buffer
// before the proxy flushes it anyway.
const IdleFlushTimeout = 50 // milliseconds; the proxy owns the actual timer

// Unit is one reassembled logical chunk of child output. Complete units keep
// their trailing '\n' so rewriting never changes line structure. A Partial
// unit was cut by the idle timeout or the final drain and carries no
// delimiter; once emitted it is final and is never re-matched.
type Unit struct {
	Data    []byte
	Partial bool
}

// Assembler buffers bytes between reads. One per session; not safe for
// concurrent use — the proxy loop is the only caller.
type Assembler struct {
	buf []byte
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Feed appends a chunk and returns the complete lines it finished, in order.
// Any trailing partial line stays buffered for the next Feed or Flush.
func (a *Assembler) Feed(p []byte) []Unit {
	if len(p) == 0 {
		return nil
	}
	a.buf = append(a.buf, p...)

	var units []Unit
	for {
		i := bytes.IndexByte(a.buf, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, i+1)
		copy(line, a.buf[:i+1])
		units = append(units, Unit{Data: line})
		a.buf = a.buf[i+1:]
	}
	return units
}

// Pending reports whether a partial line is buffered.
func (a *Assembler) Pending() bool {
	return len(a.buf) > 0
}

// Flush emits the buffered partial line. A normal (idle-timeout) flush
// withholds trailing bytes that form an incomplete UTF-8 rune so a codepoint
// is never split across units; a forced flush (EOF drain) emits everything.
// Returns false if there was nothing to emit.
func (a *Assembler) Flush(force bool) (Unit, bool) {
	if len(a.buf) == 0 {
		return Unit{}, false
	}

	cut := len(a.buf)
	if !force {
		cut -= incompleteTailLen(a.buf)
		if cut == 0 {
			// Only an unfinished codepoint is buffered; wait for more bytes.
			return Unit{}, false
		}
	}

	data := make([]byte, cut)
	copy(data, a.buf[:cut])
	a.buf = a.buf[cut:]
	return Unit{Data: data, Partial: true}, true
}

// incompleteTailLen returns how many bytes at the end of p begin a UTF-8
// sequence that hasn't fully arrived yet. Invalid bytes count as complete:
// the child's output is not guaranteed to be UTF-8 at all.
func incompleteTailLen(p []byte) int {
	// A multi-byte sequence is at most utf8.UTFMax bytes, so only the last
	// few bytes can hold an unfinished lead byte.
	start := len(p) - utf8.UTFMax
	if start < 0 {
		start = 0
	}
	for i := len(p) - 1; i >= start; i-- {
		b := p[i]
		if b < utf8.RuneSelf {
			return 0 // ASCII tail, nothing pending
		}
		if !utf8.RuneStart(b) {
			continue // continuation byte, keep scanning for the lead
		}
		tail := len(p) - i
		if r, size := utf8.DecodeRune(p[i:]); r == utf8.RuneError && size == 1 {
			// Lead byte present but the sequence is still short. If the
			// bytes can never form a valid rune (overlong tail, stray
			// lead), treat them as complete garbage and emit them.
			if tail < expectedLen(p[i]) {
				return tail
			}
		}
		return 0
	}
	return 0
}

// expectedLen returns the sequence length a UTF-8 lead byte announces,
// or 1 for bytes that can't start a sequence.
func expectedLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
