package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/output"
	"github.com/ksyq12/certrenew/internal/template"
)

var (
	scheduleFormat     string
	scheduleOnCalendar string
	scheduleCron       string
	scheduleName       string
	scheduleBinary     string
	scheduleWorkDir    string
	scheduleOutputDir  string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate a systemd timer or cron entry that runs certrenew",
	Long: `Render the files that run "certrenew run" on a schedule.

The systemd format produces a oneshot service and a timer; the cron format
produces an /etc/cron.d entry. Files are printed unless --output-dir is
given.

Examples:
  certrenew schedule
  certrenew schedule --on-calendar "*-*-* 00,12:00:00"
  sudo certrenew schedule --output-dir /etc/systemd/system
  sudo certrenew schedule --format cron --cron "17 3 * * *" --output-dir /etc/cron.d`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFormat, "format", template.FormatSystemd, "Schedule format (systemd, cron)")
	scheduleCmd.Flags().StringVar(&scheduleOnCalendar, "on-calendar", "", "systemd OnCalendar expression (default \""+template.DefaultOnCalendar+"\")")
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron schedule (default \""+template.DefaultCronSpec+"\")")
	scheduleCmd.Flags().StringVar(&scheduleName, "name", template.DefaultName, "Unit or cron file name")
	scheduleCmd.Flags().StringVar(&scheduleBinary, "binary", "", "Path of the certrenew binary (default: this executable)")
	scheduleCmd.Flags().StringVar(&scheduleWorkDir, "workdir", "", "Working directory of the scheduled run (default: current directory)")
	scheduleCmd.Flags().StringVar(&scheduleOutputDir, "output-dir", "", "Write the files into this directory instead of printing them")

	rootCmd.AddCommand(scheduleCmd)
}

// ScheduleResult lists the rendered files
type ScheduleResult struct {
	Format  string          `json:"format"`
	Files   []template.File `json:"files"`
	Written []string        `json:"written,omitempty"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	binary := scheduleBinary
	if binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate certrenew binary (use --binary): %w", err)
		}
		binary = exe
	}

	workDir := scheduleWorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	files, err := template.Render(scheduleFormat, template.TemplateData{
		Name:       scheduleName,
		Binary:     absPath(binary),
		ConfigPath: absPath(configPath),
		WorkDir:    absPath(workDir),
		LogFile:    absPath(logFile),
		OnCalendar: scheduleOnCalendar,
		CronSpec:   scheduleCron,
	})
	if err != nil {
		return err
	}

	result := ScheduleResult{Format: scheduleFormat, Files: files}

	if scheduleOutputDir != "" {
		if err := os.MkdirAll(scheduleOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", scheduleOutputDir, err)
		}
		for _, f := range files {
			path := filepath.Join(scheduleOutputDir, f.Name)
			if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			result.Written = append(result.Written, path)
		}
	}

	if jsonOutput {
		return output.JSON(result)
	}

	if len(result.Written) > 0 {
		for _, path := range result.Written {
			output.Success("Wrote %s", path)
		}
		if scheduleFormat == template.FormatSystemd {
			output.Info("Enable with: systemctl daemon-reload && systemctl enable --now %s.timer", scheduleName)
		}
		return nil
	}

	for i, f := range files {
		if i > 0 {
			output.Print("")
		}
		output.Info("%s", f.Name)
		output.Print("%s", f.Content)
	}
	return nil
}
