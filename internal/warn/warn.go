// # internal/warn/warn.go
//
// Warning delivery for the lowering pipeline. Severities:
//
//	1  remark, informational only
//	2  degraded output (unsupported construct, unresolved type)
//	3  upstream parse diagnostic
//	4  fatal upstream diagnostic
package warn

import (
	"log/slog"
	"sync"
)

const (
	Remark        = 1
	Degraded      = 2
	Diagnostic    = 3
	FatalUpstream = 4
)

// Sink receives warnings raised while lowering declarations. The core
// never fails on a recoverable condition; it reports here and moves on.
type Sink interface {
	Warn(msg string, severity int)
}

// Logger reports warnings at or above Level through slog. Severity 3+
// maps to slog error level, severity 2 to warn, severity 1 to info.
type Logger struct {
	Level int
}

func (l *Logger) Warn(msg string, severity int) {
	if severity < l.Level {
		return
	}
	switch {
	case severity >= Diagnostic:
		slog.Error(msg, "severity", severity)
	case severity == Degraded:
		slog.Warn(msg, "severity", severity)
	default:
		slog.Info(msg, "severity", severity)
	}
}

// Recorder captures warnings for inspection in tests.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

type Entry struct {
	Msg      string
	Severity int
}

func (r *Recorder) Warn(msg string, severity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Msg: msg, Severity: severity})
}

// Max returns the highest severity recorded, 0 when empty.
func (r *Recorder) Max() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, e := range r.Entries {
		if e.Severity > max {
			max = e.Severity
		}
	}
	return max
}

// Discard drops everything. Useful as a default when no sink is wired.
type Discard struct{}

func (Discard) Warn(string, int) {}
