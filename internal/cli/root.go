package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/logger"
)

var (
	configPath string
	envFile    string
	logFile    string
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "certrenew",
	Short: "Renew TLS certificates behind a reverse proxy",
	Long: `certrenew renews Let's Encrypt certificates for the domains served by a
reverse proxy.

A run stops the proxy so certbot can bind port 80, obtains each domain's
certificate in standalone mode, copies fullchain.pem and privkey.pem into
the domain's docker volume, and starts the proxy again. The proxy is
restarted whatever happens in between.

Without a subcommand, certrenew performs a run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRun,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errs.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	// assigned here rather than in the literal: setup refers to rootCmd
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Run log file (default from configuration, cert-renewal.log)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")

	addRunFlags(rootCmd)
}

// envErr holds a failed environment file load for a run, which reports it
// as a configuration error after starting the proxy
var envErr error

// setup loads the environment file and starts console-only logging.
// run reopens the logger with the run log file once configuration is known.
func setup(cmd *cobra.Command, args []string) error {
	envErr = nil
	if err := config.LoadEnvFile(envFile); err != nil {
		if cmd != rootCmd && cmd != runCmd {
			return err
		}
		envErr = err
	}
	return logger.Init(logger.Options{Console: consoleWriter(), Verbose: verbose})
}
