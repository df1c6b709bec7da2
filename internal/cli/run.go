package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/config"
	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/output"
	"github.com/ksyq12/certrenew/internal/proxy"
	"github.com/ksyq12/certrenew/internal/renew"
	"github.com/ksyq12/certrenew/internal/ssl"
	"github.com/ksyq12/certrenew/internal/volume"
)

var (
	runDryRun  bool
	runDomains []string
	runStrict  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Renew certificates for the configured domains",
	Long: `Stop the reverse proxy, obtain each domain's certificate with certbot,
copy it into the domain's docker volume, and start the proxy again.

A domain that fails is logged and skipped; the remaining domains are still
processed and the exit code stays 0. A configuration error skips the proxy
stop and all domains, still starts the proxy, and exits 1.

Examples:
  sudo certrenew run
  sudo certrenew run --config /etc/certrenew/config.yaml
  sudo certrenew run --domain a.example.com --domain b.example.com
  certrenew run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the run flags on cmd; the root command shares them
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Log what would be done without touching the proxy, certbot or volumes")
	cmd.Flags().StringArrayVarP(&runDomains, "domain", "d", nil, "Only renew this configured domain (repeatable)")
	cmd.Flags().BoolVar(&runStrict, "strict", false, "Reject domain and volume names that are not plain names")
}

func runRun(cmd *cobra.Command, args []string) error {
	if !runDryRun {
		if err := deps.RootChecker.RequireRoot(); err != nil {
			return err
		}
	}

	cfg, loadErr := loadConfigOrDefaults()
	if envErr != nil {
		loadErr = envErr
	}

	var domains []config.Domain
	if loadErr == nil {
		loadErr = cfg.Validate(runStrict)
	}
	if loadErr == nil {
		domains, loadErr = cfg.Select(runDomains)
	}

	if err := initRunLog(resolveLogFile(cfg)); err != nil {
		return err
	}
	defer logger.Close()

	logger.DebugFields("Configuration", map[string]interface{}{
		"config":  configPath,
		"domains": len(domains),
		"proxy":   cfg.Proxy.Type + ":" + cfg.Proxy.Name,
		"dry_run": runDryRun,
	})

	ctrl, err := proxy.New(cfg.Proxy.Type, cfg.Proxy.Name, deps.Executor)
	if err != nil {
		// An unknown type has already failed Validate
		if loadErr == nil {
			loadErr = err
		}
		ctrl = proxy.NewDocker(fallbackProxyName(cfg), deps.Executor)
	}

	issuer := ssl.NewIssuer(deps.Executor, ssl.IssuerOptions{
		LiveDir: cfg.Paths.LiveDir,
		Verbose: cfg.Certbot.Verbose,
		Email:   cfg.Certbot.Email,
	})
	store := volume.NewStore(cfg.Paths.VolumesRoot)

	orch := renew.New(ctrl, issuer, store, renew.Options{DryRun: runDryRun})
	orch.SetClock(deps.Clock.Now)

	report := orch.Run(domains, loadErr)

	if err := printReport(report); err != nil {
		return err
	}

	if code := report.ExitCode(); code != 0 {
		return &exitError{code: code, err: report.Err()}
	}
	return nil
}

func fallbackProxyName(cfg *config.Config) string {
	if cfg.Proxy.Name != "" {
		return cfg.Proxy.Name
	}
	return config.DefaultProxyName
}

func printReport(report *renew.Report) error {
	if jsonOutput {
		return output.JSON(report)
	}

	if len(report.Domains) > 0 {
		output.Print("")
		rows := make([][]string, 0, len(report.Domains))
		for _, d := range report.Domains {
			detail := output.Faint(d.DestDir)
			if d.Error != "" {
				detail = d.Error
			}
			rows = append(rows, []string{d.Domain, d.Volume, output.Status(string(d.Status)), detail})
		}
		output.Table([]string{"DOMAIN", "VOLUME", "STATUS", "DETAIL"}, rows)
		output.Print("")
	}

	switch {
	case report.Err() != nil:
		output.Error("Run failed: %v", report.Err())
	case report.DryRun:
		output.Info("Dry run: %d domain(s) planned", len(report.Domains))
	case report.Failed() > 0:
		output.Warn("%d succeeded, %d failed", report.Succeeded(), report.Failed())
	default:
		output.Success("%d domain(s) renewed", report.Succeeded())
	}

	if report.ProxyStart.Attempted && !report.ProxyStart.OK() {
		output.Error("Reverse proxy did not start: %s", report.ProxyStart.Error)
	}
	return nil
}
