// Package template renders the files that schedule a renewal run from
// embedded Go templates: a systemd service and timer pair, or an
// /etc/cron.d entry.
//
// # Template Organization
//
//	systemd/service.tmpl  -> <name>.service
//	systemd/timer.tmpl    -> <name>.timer
//	cron/cron.tmpl        -> <name>
//
// # Rendering Templates
//
//	files, err := template.Render(template.FormatSystemd, template.TemplateData{
//	    Binary:     "/usr/local/bin/certrenew",
//	    ConfigPath: "/etc/certrenew/config.json",
//	    WorkDir:    "/var/log/certrenew",
//	})
//
// Empty Name, OnCalendar and CronSpec fall back to DefaultName,
// DefaultOnCalendar and DefaultCronSpec.
//
// # Custom Functions
//
//   - quote: double-quotes a value for a systemd ExecStart line
//   - shellquote: single-quotes a value for /bin/sh
package template
