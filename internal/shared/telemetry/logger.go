package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	minLevel atomic.Int32

	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// SetLevel sets the minimum level emitted. Accepts DEBUG, INFO, WARNING/WARN,
// ERROR (case-insensitive); anything else falls back to INFO.
func SetLevel(level string) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		minLevel.Store(levelDebug)
	case "WARN", "WARNING":
		minLevel.Store(levelWarn)
	case "ERROR":
		minLevel.Store(levelError)
	default:
		minLevel.Store(levelInfo)
	}
}

// SetOutput redirects log output and returns a restore function. Used by tests.
func SetOutput(w io.Writer) func() {
	outMu.Lock()
	prev := out
	out = w
	outMu.Unlock()
	return func() {
		outMu.Lock()
		out = prev
		outMu.Unlock()
	}
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(levelDebug, "debug", msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(levelInfo, "info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(levelWarn, "warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(levelError, "error", msg, fields)
}

func write(level int32, name, msg string, fields map[string]any) {
	if level < minLevel.Load() {
		return
	}
	entry := make(map[string]any, len(fields)+3)
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = name
	entry["msg"] = msg
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)

	outMu.Lock()
	defer outMu.Unlock()
	if err != nil {
		fmt.Fprintf(out, `{"ts":"%s","level":"error","msg":"logger marshal failed","err":%q}`+"\n", time.Now().UTC().Format(time.RFC3339), err.Error())
		return
	}
	fmt.Fprintln(out, string(data))
}
