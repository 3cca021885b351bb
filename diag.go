package retro

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the subset of a structured logger the session writes to.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// NewDefaultLogger returns the stderr logger used when no Logger option is
// given.
func NewDefaultLogger(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "retro",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Diagnostics reports rejected calls. Each distinct call site is reported at
// most once so that a bad call inside the frame loop cannot flood the log.
type Diagnostics struct {
	logger Logger
	seen   map[string]struct{}
}

// NewDiagnostics wraps logger with per-call-site deduplication.
func NewDiagnostics(logger Logger) *Diagnostics {
	return &Diagnostics{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// WarnOnce logs msg unless key was already reported.
func (d *Diagnostics) WarnOnce(key string, msg string, keyvals ...any) {
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	if d.logger != nil {
		d.logger.Warn(msg, append(keyvals, "site", key)...)
	}
}

// Reported reports whether key has been logged.
func (d *Diagnostics) Reported(key string) bool {
	_, ok := d.seen[key]
	return ok
}

// Count returns the number of distinct call sites reported.
func (d *Diagnostics) Count() int {
	return len(d.seen)
}

// packagePrefix is the symbol prefix shared by every function in this package.
var packagePrefix = packageOf()

func packageOf() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	return strings.TrimSuffix(name, "packageOf")
}

// callSite identifies the code that called into the package: the first stack
// frame outside this package's non-test sources.
func callSite() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		internal := strings.HasPrefix(f.Function, packagePrefix) && !strings.HasSuffix(f.File, "_test.go")
		if !internal {
			return fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		if !more {
			return "unknown"
		}
	}
}
