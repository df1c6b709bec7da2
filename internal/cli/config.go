package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certrenew/internal/input"
	"github.com/ksyq12/certrenew/internal/output"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration as certrenew sees it: file values merged with
defaults and CERTRENEW_* environment overrides.

Examples:
  certrenew config show
  certrenew config show --json
  CERTRENEW_PROXY_NAME=nginx certrenew config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a sample JSON configuration to the --config path.

An existing file is only replaced after confirmation, or with --force.

Examples:
  certrenew config init
  certrenew config init --config /etc/certrenew/config.json --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(cfg)
	}

	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	output.Print("%s", data)
	return nil
}

// ConfigInitResult reports the file written by config init
type ConfigInitResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force := configInitForce
	if _, err := os.Stat(configPath); err == nil && !force && !jsonOutput {
		output.Print("%s already exists. Overwrite it? [y/N]: ", configPath)
		if !input.Confirm(deps.Input) {
			output.Info("Init cancelled")
			return nil
		}
		force = true
	}

	if err := deps.ConfigLoader.Init(configPath, force); err != nil {
		return err
	}
	return outputResult(ConfigInitResult{Success: true, Path: configPath}, "Wrote sample configuration to %s", configPath)
}
