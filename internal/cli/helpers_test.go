package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/output"
)

// resetFlags restores every command flag to its default (for testing)
func resetFlags() {
	configPath = "config.json"
	envFile = ".env"
	logFile = ""
	jsonOutput = false
	verbose = false
	envErr = nil

	runDryRun = false
	runDomains = nil
	runStrict = false

	statusWarnDays = 30

	scheduleFormat = "systemd"
	scheduleOnCalendar = ""
	scheduleCron = ""
	scheduleName = ""
	scheduleBinary = ""
	scheduleWorkDir = ""
	scheduleOutputDir = ""

	logsErrors = false
	logsLines = 20

	configInitForce = false
}

// prepare resets flags, points the run log into a temp dir and captures
// command output. It returns the run log path and the output buffer.
func prepare(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	resetFlags()

	logFile = filepath.Join(t.TempDir(), "cert-renewal.log")

	var buf bytes.Buffer
	output.SetOutput(&buf)
	t.Cleanup(func() {
		output.SetOutput(nil)
		_ = logger.Close()
		resetFlags()
	})
	return logFile, &buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
