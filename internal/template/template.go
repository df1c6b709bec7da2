package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Schedule formats
const (
	FormatSystemd = "systemd"
	FormatCron    = "cron"
)

// Defaults for scheduling data
const (
	DefaultName       = "certrenew"
	DefaultOnCalendar = "*-*-* 03:00:00"
	DefaultCronSpec   = "0 3 * * *"
)

// TemplateData contains data for rendering templates
type TemplateData struct {
	Name       string // unit and cron file base name
	Binary     string // absolute path of the certrenew binary
	ConfigPath string
	WorkDir    string // the run log is written here unless LogFile is absolute
	LogFile    string
	OnCalendar string // systemd OnCalendar expression
	CronSpec   string // five-field cron schedule
}

// File is a rendered file and the name it should be installed under
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// layout maps each format to its templates and the installed file suffix
var layout = map[string][]struct {
	tmpl   string
	suffix string
}{
	FormatSystemd: {
		{"systemd/service.tmpl", ".service"},
		{"systemd/timer.tmpl", ".timer"},
	},
	FormatCron: {
		{"cron/cron.tmpl", ""},
	},
}

var funcMap = template.FuncMap{
	"quote":      systemdQuote,
	"shellquote": shellQuote,
}

// Render renders the scheduling files for format
func Render(format string, data TemplateData) ([]File, error) {
	fs, err := getTemplateFS(format)
	if err != nil {
		return nil, err
	}

	applyDefaults(&data)

	files := make([]File, 0, len(layout[format]))
	for _, entry := range layout[format] {
		content, err := fs.ReadFile(entry.tmpl)
		if err != nil {
			return nil, fmt.Errorf("template not found: %s", entry.tmpl)
		}

		tmpl, err := template.New(entry.tmpl).Funcs(funcMap).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render template: %w", err)
		}

		files = append(files, File{Name: data.Name + entry.suffix, Content: buf.String()})
	}

	return files, nil
}

// Available returns all schedule formats
func Available() []string {
	return []string{FormatSystemd, FormatCron}
}

func applyDefaults(data *TemplateData) {
	if data.Name == "" {
		data.Name = DefaultName
	}
	if data.OnCalendar == "" {
		data.OnCalendar = DefaultOnCalendar
	}
	if data.CronSpec == "" {
		data.CronSpec = DefaultCronSpec
	}
}

// systemdQuote double-quotes s for an ExecStart line when it needs it
func systemdQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	return strconv.Quote(s)
}

// shellQuote single-quotes s for /bin/sh when it needs it
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:@%+", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
