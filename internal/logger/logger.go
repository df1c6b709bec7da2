// Package logger provides the run log for the certrenew CLI tool.
//
// Every renewal run appends timestamped lines to a log file in the
// working directory and echoes them to the console, so a cron or systemd
// invocation leaves a durable trail while an interactive run shows
// progress as it happens.
//
// # Log Levels
//
// Four log levels are supported, in order of severity:
//   - Debug: Detailed information, only with --verbose
//   - Info: Normal progress of a run
//   - Warn: Unusual conditions that don't affect the run
//   - Error: Failures, fatal or isolated
//
// # Initialization
//
//	err := logger.Init(logger.Options{
//	    File:    "cert-renewal.log",
//	    Console: os.Stdout,
//	    Verbose: verbose,
//	})
//	defer logger.Close()
//
// Before Init is called, messages go to stdout at Info level.
//
// # Output Format
//
// Lines carry an ISO-8601 UTC timestamp with millisecond precision.
// Info lines have no marker, the other levels are marked:
//
//	[2026-10-17T08:30:00.000Z] Stopping reverse proxy...
//	[2026-10-17T08:30:04.512Z] ERROR: Failed to process a.example.com: certbot failed
//	[2026-10-17T08:30:04.513Z] WARN: certificate for b.example.com expires in 3 days
//
// Structured logs append key=value pairs:
//
//	[2026-10-17T08:30:05.000Z] Run finished failed=1 succeeded=2
//
// ParseLine reads a line back into an Entry.
package logger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "DEBUG":
		*l = LevelDebug
	case "INFO":
		*l = LevelInfo
	case "WARN":
		*l = LevelWarn
	case "ERROR":
		*l = LevelError
	default:
		return fmt.Errorf("unknown log level %q", text)
	}
	return nil
}

// marker is the text written between the timestamp and the message.
func (l Level) marker() string {
	switch l {
	case LevelInfo:
		return ""
	case LevelDebug, LevelWarn, LevelError:
		return l.String() + ": "
	default:
		return ""
	}
}

// Options configures the global logger.
type Options struct {
	File    string    // log file, appended to; empty disables file output
	Console io.Writer // console echo; nil disables it
	Verbose bool      // enable Debug level
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	level   Level
	outputs []io.Writer
	file    *os.File
	now     func() time.Time
	mu      sync.Mutex
}

// Global logger instance.
var std = &Logger{
	level:   LevelInfo,
	outputs: []io.Writer{os.Stdout},
	now:     time.Now,
}

// Init configures the global logger. Any previously opened log file is closed.
func Init(opts Options) error {
	var file *os.File
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	std.mu.Lock()
	defer std.mu.Unlock()

	if std.file != nil {
		_ = std.file.Close()
	}
	std.file = file
	std.outputs = nil
	if file != nil {
		std.outputs = append(std.outputs, file)
	}
	if opts.Console != nil {
		std.outputs = append(std.outputs, opts.Console)
	}

	if opts.Verbose {
		std.level = LevelDebug
	} else {
		std.level = LevelInfo
	}
	return nil
}

// Close closes the log file, if any, and restores console-only output.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.outputs = []io.Writer{os.Stdout}
	if std.file == nil {
		return nil
	}
	err := std.file.Close()
	std.file = nil
	return err
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetOutput replaces all outputs of the global logger with w.
// Useful for testing. A nil writer restores os.Stdout.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	std.outputs = []io.Writer{w}
}

// SetClock overrides the time source (for testing). nil restores time.Now.
func SetClock(now func() time.Time) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	std.now = now
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// write emits one formatted line to every output.
// A failing output does not prevent the others from receiving the line.
func (l *Logger) write(level Level, msg string) {
	line := fmt.Sprintf("[%s] %s%s\n", l.now().UTC().Format(TimeFormat), level.marker(), msg)
	for _, w := range l.outputs {
		_, _ = io.WriteString(w, line)
	}
}

// log writes a formatted message at the specified level.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	l.write(level, fmt.Sprintf(format, args...))
}

// logFields writes a message with structured key-value fields.
func (l *Logger) logFields(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	// Sort field keys for consistent output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldParts []string
	for _, k := range keys {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	fieldsStr := ""
	if len(fieldParts) > 0 {
		fieldsStr = " " + strings.Join(fieldParts, " ")
	}

	l.write(level, msg+fieldsStr)
}

// Debug logs a debug message.
// Only written when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelInfo, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelError, msg, fields)
}

// LogError logs an error with additional context message.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	std.log(LevelError, "%s: %v", msg, err)
}

// Entry is a parsed log line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// IsError reports whether the entry was logged at Error level.
func (e Entry) IsError() bool {
	return e.Level == LevelError
}

var lineRe = regexp.MustCompile(`^\[([^\]]+)\] (?:(DEBUG|WARN|ERROR): )?(.*)$`)

// ParseLine parses a single log line.
func ParseLine(line string) (Entry, error) {
	m := lineRe.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return Entry{}, fmt.Errorf("malformed log line: %q", line)
	}

	ts, err := time.Parse(time.RFC3339Nano, m[1])
	if err != nil {
		return Entry{}, fmt.Errorf("malformed timestamp %q: %w", m[1], err)
	}

	level := LevelInfo
	switch m[2] {
	case "DEBUG":
		level = LevelDebug
	case "WARN":
		level = LevelWarn
	case "ERROR":
		level = LevelError
	}

	return Entry{Time: ts, Level: level, Message: m[3]}, nil
}

// ReadEntries parses every well-formed line from r, skipping the rest.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		entry, err := ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
