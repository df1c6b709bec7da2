package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/output"
)

var (
	logsErrors bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent entries of the run log",
	Long: `Show the last entries of the run log written by "certrenew run".

The log file is taken from --log-file, then from the configuration, then
defaults to cert-renewal.log in the working directory.

Examples:
  certrenew logs            # Show the last 20 entries
  certrenew logs -n 100     # Show the last 100 entries
  certrenew logs --errors   # Show only ERROR entries
  certrenew logs --json`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsErrors, "errors", false, "Show ERROR entries only")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Number of entries to show (0 for all)")

	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	// A broken configuration must not hide the log that explains it
	cfg, _ := loadConfigOrDefaults()
	path := resolveLogFile(cfg)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no run log at %s", path)
		}
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	entries, err := logger.ReadEntries(f)
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}

	if logsErrors {
		filtered := entries[:0]
		for _, e := range entries {
			if e.IsError() {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if logsLines > 0 && len(entries) > logsLines {
		entries = entries[len(entries)-logsLines:]
	}

	if jsonOutput {
		if entries == nil {
			entries = []logger.Entry{}
		}
		return output.JSON(entries)
	}

	if len(entries) == 0 {
		output.Print("No entries in %s", path)
		return nil
	}

	for _, e := range entries {
		ts := e.Time.UTC().Format(logger.TimeFormat)
		switch e.Level {
		case logger.LevelError:
			output.Error("%s %s", ts, e.Message)
		case logger.LevelWarn:
			output.Warn("%s %s", ts, e.Message)
		default:
			output.Print("  %s %s", output.Faint(ts), e.Message)
		}
	}
	return nil
}
