package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/config"
	"github.com/ksyq12/certrenew/internal/output"
	"github.com/ksyq12/certrenew/internal/platform"
	"github.com/ksyq12/certrenew/internal/proxy"
	"github.com/ksyq12/certrenew/internal/ssl"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks before a renewal.

Checks:
  - Platform
  - certbot installation
  - Proxy control binary (docker or systemctl)
  - Configuration file validity
  - Certificate and volume directories, with the detected Docker volumes root
  - Reverse proxy state
  - Root privileges

Examples:
  certrenew doctor
  certrenew doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	checkSuccess = "success"
	checkWarning = "warning"
	checkError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Proxy              []CheckResult `json:"proxy"`
}

// Errors counts the checks that failed
func (r *DoctorReport) Errors() int {
	n := 0
	for _, group := range [][]CheckResult{r.SystemRequirements, r.Configuration, r.Proxy} {
		for _, c := range group {
			if c.Status == checkError {
				n++
			}
		}
	}
	return n
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, loadErr := loadConfigOrDefaults()

	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(cfg)
	report.Configuration = checkConfiguration(cfg, loadErr)
	report.Proxy = checkProxy(cfg)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

// detectVolumesRoot is replaced in tests
var detectVolumesRoot = platform.DetectVolumesRoot

func checkSystemRequirements(cfg *config.Config) []CheckResult {
	results := []CheckResult{{
		Status:  checkSuccess,
		Message: fmt.Sprintf("Platform %s", platform.Platform()),
	}}

	issuer := ssl.NewIssuer(deps.Executor, ssl.IssuerOptions{})
	if issuer.IsInstalled() {
		version, err := issuer.Version()
		if err != nil {
			version = "unknown"
		}
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("Certbot installed (%s)", version),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: "Certbot not installed",
		})
	}

	binary, err := proxy.Binary(cfg.Proxy.Type)
	if err != nil {
		results = append(results, CheckResult{Status: checkError, Message: err.Error()})
	} else if _, err := deps.Executor.LookPath(binary); err == nil {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("%s installed", binary),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("%s not installed (needed for proxy type %s)", binary, cfg.Proxy.Type),
		})
	}

	if err := deps.RootChecker.RequireRoot(); err != nil {
		results = append(results, CheckResult{
			Status:  checkWarning,
			Message: "Not running as root (run needs sudo)",
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: "Running as root",
		})
	}

	return results
}

func checkConfiguration(cfg *config.Config, loadErr error) []CheckResult {
	results := []CheckResult{}

	if loadErr != nil {
		return append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("Config %s: %v", configPath, loadErr),
		})
	}

	results = append(results, CheckResult{
		Status:  checkSuccess,
		Message: fmt.Sprintf("Config file valid (%s, %d domains)", configPath, len(cfg.Domains)),
	})

	if len(cfg.Domains) == 0 {
		results = append(results, CheckResult{
			Status:  checkWarning,
			Message: "No domains configured",
		})
	}

	// Names that --strict would reject
	for _, d := range cfg.Domains {
		if err := config.ValidateDomainName(d.URL); err != nil {
			results = append(results, CheckResult{Status: checkWarning, Message: err.Error()})
		}
		if err := config.ValidateVolumeName(d.Volume()); err != nil {
			results = append(results, CheckResult{Status: checkWarning, Message: err.Error()})
		}
	}

	dirs := []struct {
		label string
		path  string
	}{
		{"Certificate directory", cfg.Paths.LiveDir},
		{"Volumes root", cfg.Paths.VolumesRoot},
	}
	for _, dir := range dirs {
		if info, err := os.Stat(dir.path); err == nil && info.IsDir() {
			results = append(results, CheckResult{
				Status:  checkSuccess,
				Message: fmt.Sprintf("%s exists (%s)", dir.label, dir.path),
			})
		} else {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("%s not found (%s)", dir.label, dir.path),
			})
		}
	}

	if _, err := os.Stat(cfg.Paths.VolumesRoot); err != nil {
		if root, err := detectVolumesRoot(); err == nil && root != cfg.Paths.VolumesRoot {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("Docker keeps volumes in %s (set paths.volumes_root)", root),
			})
		} else if err != nil {
			results = append(results, CheckResult{Status: checkWarning, Message: err.Error()})
		}
	}

	return results
}

func checkProxy(cfg *config.Config) []CheckResult {
	ctrl, err := proxy.New(cfg.Proxy.Type, cfg.Proxy.Name, deps.Executor)
	if err != nil {
		return []CheckResult{{Status: checkError, Message: err.Error()}}
	}

	running, err := ctrl.IsRunning()
	switch {
	case err != nil:
		return []CheckResult{{Status: checkError, Message: fmt.Sprintf("Could not query %s: %v", ctrl.Name(), err)}}
	case running:
		return []CheckResult{{Status: checkSuccess, Message: fmt.Sprintf("%s %s is running", cfg.Proxy.Type, ctrl.Name())}}
	default:
		return []CheckResult{{Status: checkWarning, Message: fmt.Sprintf("%s %s is not running", cfg.Proxy.Type, ctrl.Name())}}
	}
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking reverse proxy...")
	for _, check := range report.Proxy {
		displayCheck(check)
	}

	if n := report.Errors(); n > 0 {
		output.Print("")
		output.Error("%d problem(s) found", n)
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case checkSuccess:
		output.Success("%s", check.Message)
	case checkWarning:
		output.Warn("%s", check.Message)
	case checkError:
		output.Error("%s", check.Message)
	}
}
