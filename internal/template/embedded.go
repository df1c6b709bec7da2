package template

import (
	"embed"
	"fmt"
)

//go:embed systemd/*.tmpl
var systemdTemplates embed.FS

//go:embed cron/*.tmpl
var cronTemplates embed.FS

// getTemplateFS returns the embed.FS for the given schedule format
func getTemplateFS(format string) (embed.FS, error) {
	switch format {
	case FormatSystemd:
		return systemdTemplates, nil
	case FormatCron:
		return cronTemplates, nil
	default:
		return embed.FS{}, fmt.Errorf("unknown schedule format: %s (available: %s, %s)", format, FormatSystemd, FormatCron)
	}
}
