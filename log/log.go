// Package log provides file-backed logging for the wrapper.
// Diagnostics must never hit the stdout/stderr being proxied to the user's
// terminal, so everything goes to a log file under the OS temp dir.
package log

import (
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
)

var logFileName = filepath.Join(os.TempDir(), "nyantheme.log")

var (
	// globalLogFile is the file that all loggers write to.
	globalLogFile *os.File

	InfoLog    *stdlog.Logger
	WarningLog *stdlog.Logger
	ErrorLog   *stdlog.Logger
)

// Initialize sets up file logging. Call once at startup; pair with Close.
func Initialize() {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		// stderr is safe here: nothing is being proxied yet.
		fmt.Fprintf(os.Stderr, "could not open log file: %s\n", err)
		os.Exit(1)
	}

	globalLogFile = f
	InfoLog = stdlog.New(f, "INFO:", stdlog.Ldate|stdlog.Ltime|stdlog.Lshortfile)
	WarningLog = stdlog.New(f, "WARN:", stdlog.Ldate|stdlog.Ltime|stdlog.Lshortfile)
	ErrorLog = stdlog.New(f, "ERROR:", stdlog.Ldate|stdlog.Ltime|stdlog.Lshortfile)

	InitDebug()
}

// Close flushes session stats and closes the log file.
func Close() {
	CloseDebug()
	if globalLogFile != nil {
		_ = globalLogFile.Close()
	}
}
