/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package logging provides component-scoped structured logging for ReplayDB.

Log lines carry a timestamp, level, component name, message and sorted
key-value fields. Output is human-readable text by default, colourised
only when written to a terminal, or one JSON object per line.

Usage:

	logger := logging.NewLogger("engine")
	logger.Info("Command executed", "command", "CREATE", "history_len", 3)
	logger.Warn("Command failed", "error", err)

Front ends that own the terminal (the TUI) send logs to a file or to
io.Discard with SetGlobalOutput before creating any loggers.
*/
package logging

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name in any case. WARNING is accepted for
// WARN. The second result is false for unknown names, which map to INFO.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	default:
		return INFO, false
	}
}

// Entry is a single log record as written in JSON mode.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Config holds the process-wide logger settings.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
}

// DefaultConfig logs INFO and above as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  INFO,
		Output: os.Stderr,
	}
}

var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
	writeMu      sync.Mutex
)

// SetGlobalLevel sets the minimum level for every logger.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput sets the destination for every logger.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode switches every logger between text and JSON output.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// Configure applies a full Config.
func Configure(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	globalConfig = cfg
}

// Logger writes entries tagged with one component name.
type Logger struct {
	component string
}

// NewLogger creates a logger for the named component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// Component returns the component name.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) log(level Level, msg string, args ...any) {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()

	if level < cfg.Level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    fieldsFromArgs(args),
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	if cfg.JSONMode {
		writeJSON(cfg.Output, entry)
	} else {
		writeText(cfg.Output, entry, isTerminal(cfg.Output))
	}
}

// fieldsFromArgs pairs up alternating keys and values. A non-string key
// is named after its position and a trailing odd value is kept as "extra".
func fieldsFromArgs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		fields[key] = fieldValue(args[i+1])
	}
	if len(args)%2 != 0 {
		fields["extra"] = fieldValue(args[len(args)-1])
	}
	return fields
}

// fieldValue renders errors as their message so JSON output keeps them.
func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// writeText formats:
// 2006-01-02T15:04:05.000Z [LEVEL] [component] message key=value ...
func writeText(w io.Writer, entry Entry, color bool) {
	var sb strings.Builder
	sb.WriteString(entry.Timestamp.Format("2006-01-02T15:04:05.000Z"))
	sb.WriteByte(' ')

	if color {
		sb.WriteString(levelColor(entry.Level))
	}
	fmt.Fprintf(&sb, "[%-5s]", entry.Level)
	if color {
		sb.WriteString("\033[0m")
	}
	fmt.Fprintf(&sb, " [%s] %s", entry.Component, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Fields[k])
	}

	fmt.Fprintln(w, sb.String())
}

func levelColor(level string) string {
	switch level {
	case "DEBUG":
		return "\033[36m"
	case "INFO":
		return "\033[32m"
	case "WARN":
		return "\033[33m"
	case "ERROR":
		return "\033[31m"
	}
	return "\033[0m"
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args...)
}

// With returns a logger that adds the given fields to every entry.
func (l *Logger) With(args ...any) *ContextLogger {
	return &ContextLogger{logger: l, args: append([]any(nil), args...)}
}

// ContextLogger is a logger with pre-set fields.
type ContextLogger struct {
	logger *Logger
	args   []any
}

func (c *ContextLogger) merge(args []any) []any {
	return append(append([]any(nil), c.args...), args...)
}

// Debug logs a message at DEBUG level with context fields.
func (c *ContextLogger) Debug(msg string, args ...any) {
	c.logger.log(DEBUG, msg, c.merge(args)...)
}

// Info logs a message at INFO level with context fields.
func (c *ContextLogger) Info(msg string, args ...any) {
	c.logger.log(INFO, msg, c.merge(args)...)
}

// Warn logs a message at WARN level with context fields.
func (c *ContextLogger) Warn(msg string, args ...any) {
	c.logger.log(WARN, msg, c.merge(args)...)
}

// Error logs a message at ERROR level with context fields.
func (c *ContextLogger) Error(msg string, args ...any) {
	c.logger.log(ERROR, msg, c.merge(args)...)
}

// ============================================================================
// Request Tracking
// ============================================================================

var requestCounter uint64

// GenerateRequestID returns "<counter>-<random hex>".
func GenerateRequestID() string {
	counter := atomic.AddUint64(&requestCounter, 1)
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%d-%s", counter, hex.EncodeToString(randomBytes))
}

// RequestContext tracks one request from a network client.
type RequestContext struct {
	ID         string
	StartTime  time.Time
	ClientAddr string
	Command    string
}

// NewRequestContext starts tracking a request.
func NewRequestContext(clientAddr, command string) *RequestContext {
	return &RequestContext{
		ID:         GenerateRequestID(),
		StartTime:  time.Now(),
		ClientAddr: clientAddr,
		Command:    command,
	}
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() float64 {
	return float64(time.Since(r.StartTime).Microseconds()) / 1000.0
}

func (r *RequestContext) baseArgs(status string) []any {
	return []any{
		"request_id", r.ID,
		"client", r.ClientAddr,
		"command", r.Command,
		"status", status,
		"duration_ms", fmt.Sprintf("%.2f", r.DurationMs()),
	}
}

// LogComplete logs a successful request at INFO.
func (r *RequestContext) LogComplete(logger *Logger, args ...any) {
	logger.Info("Request completed", append(r.baseArgs("ok"), args...)...)
}

// LogError logs a failed request at WARN.
func (r *RequestContext) LogError(logger *Logger, err error, args ...any) {
	base := append(r.baseArgs("error"), "error", err)
	logger.Warn("Request failed", append(base, args...)...)
}
