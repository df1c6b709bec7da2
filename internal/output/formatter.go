package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	faintColor   = color.New(color.Faint)
)

// out overrides the destination of every helper; nil means os.Stdout
var out io.Writer

// SetOutput redirects output to w. A nil writer restores os.Stdout.
func SetOutput(w io.Writer) {
	out = w
}

func writer() io.Writer {
	if out != nil {
		return out
	}
	return os.Stdout
}

// JSON outputs data as JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(writer())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

var ansiRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleLen is the printed width of s, ignoring color escapes
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiRe.ReplaceAllString(s, ""))
}

func pad(s string, width int) string {
	if n := visibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Table outputs data as a formatted table. Cells may be colored.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	w := writer()

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = pad(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(headers)
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

// Status colors a status word: green for success/ok, red for
// failed/error/expired, yellow for anything else.
func Status(s string) string {
	switch strings.ToLower(s) {
	case "success", "ok", "running", "valid":
		return successColor.Sprint(s)
	case "failed", "fail", "error", "expired", "missing", "stopped":
		return errorColor.Sprint(s)
	default:
		return warnColor.Sprint(s)
	}
}

// Days colors a days-left count against the warning threshold
func Days(days, warnDays int) string {
	s := fmt.Sprintf("%d", days)
	switch {
	case days < 0:
		return errorColor.Sprint(s)
	case days <= warnDays:
		return warnColor.Sprint(s)
	default:
		return successColor.Sprint(s)
	}
}

// Faint dims secondary text such as paths
func Faint(s string) string {
	return faintColor.Sprint(s)
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(writer(), "✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(writer(), "✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(writer(), "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(writer(), "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	fmt.Fprintf(writer(), format+"\n", args...)
}
