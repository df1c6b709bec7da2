package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ksyq12/certrenew/internal/config"
	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/output"
)

// exitError ends the process with a non-zero code without printing err
// again; the failure has already been logged.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// consoleWriter is where the run log is echoed. JSON output keeps stdout
// for the document.
func consoleWriter() io.Writer {
	if deps.Console != nil {
		return deps.Console
	}
	if jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}

// loadConfig loads the configuration named by --config
func loadConfig() (*config.Config, error) {
	return deps.ConfigLoader.Load(configPath)
}

// loadConfigOrDefaults returns the configuration and its load error. A file
// that parsed but failed validation still supplies its settings; the
// defaults stand in only when the file could not be read.
func loadConfigOrDefaults() (*config.Config, error) {
	cfg, err := loadConfig()
	if cfg == nil {
		return deps.ConfigLoader.Defaults(), err
	}
	return cfg, err
}

// resolveLogFile picks the run log path: --log-file, then the configuration
func resolveLogFile(cfg *config.Config) string {
	if logFile != "" {
		return logFile
	}
	if cfg != nil && cfg.LogFile != "" {
		return cfg.LogFile
	}
	return config.DefaultLogFile
}

// initRunLog reopens the logger with the run log file
func initRunLog(path string) error {
	return logger.Init(logger.Options{
		File:    path,
		Console: consoleWriter(),
		Verbose: verbose,
	})
}

// absPath makes p absolute, leaving it unchanged when that fails
func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}
