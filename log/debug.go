// Debug mode is enabled by setting NYANTHEME_DEBUG=1. It adds a verbose
// trace log and a per-session stats summary written at shutdown.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

var (
	DebugEnabled bool
	DebugLog     *stdlog.Logger
	debugLogFile *os.File
)

var debugLogFileName = filepath.Join(os.TempDir(), "nyantheme-debug.log")

// InitDebug initializes debug logging if NYANTHEME_DEBUG=1 is set.
// Called from Initialize.
func InitDebug() {
	if os.Getenv("NYANTHEME_DEBUG") != "1" {
		// No-op logger so call sites never nil-check.
		DebugLog = stdlog.New(io.Discard, "", 0)
		return
	}

	DebugEnabled = true

	f, err := os.OpenFile(debugLogFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		if ErrorLog != nil {
			ErrorLog.Printf("could not open debug log file: %s", err)
		}
		DebugLog = stdlog.New(io.Discard, "", 0)
		return
	}

	DebugLog = stdlog.New(f, "DEBUG:", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
	debugLogFile = f

	DebugLog.Println("Debug mode enabled")
	DebugLog.Printf("Debug log: %s", debugLogFileName)
}

// CloseDebug writes the session stats summary and closes the debug log file.
func CloseDebug() {
	if debugLogFile != nil {
		stats.Log()
		_ = debugLogFile.Close()
	}
}

// Debug logs a debug message if debug mode is enabled.
func Debug(format string, v ...interface{}) {
	if DebugEnabled && DebugLog != nil {
		DebugLog.Printf(format, v...)
	}
}

// SessionStats tracks proxy throughput counters for the debug summary.
type SessionStats struct {
	mu        sync.Mutex
	startedAt time.Time

	BytesIn        atomic.Int64 // stdin -> pty
	BytesOut       atomic.Int64 // pty -> stdout, after rewriting
	UnitsTotal     atomic.Int64
	UnitsRewritten atomic.Int64
	IdleFlushes    atomic.Int64
}

var stats = &SessionStats{startedAt: time.Now()}

// Stats returns the global session stats collector.
func Stats() *SessionStats {
	return stats
}

// Log writes a one-shot summary of the counters to the debug log.
func (s *SessionStats) Log() {
	if !DebugEnabled || DebugLog == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.startedAt)
	DebugLog.Print(fmt.Sprintf(
		"session stats: elapsed=%v bytes_in=%d bytes_out=%d units=%d rewritten=%d idle_flushes=%d",
		elapsed.Round(time.Millisecond),
		s.BytesIn.Load(), s.BytesOut.Load(),
		s.UnitsTotal.Load(), s.UnitsRewritten.Load(), s.IdleFlushes.Load()))
}
