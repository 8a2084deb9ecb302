// Package cli implements the workspace command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/workspace-go/internal/config"
	"github.com/custodia-labs/workspace-go/internal/google"
	"github.com/custodia-labs/workspace-go/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Google Workspace API client",
	Long: `workspace is a command-line client for the Google Drive, Sheets and
Calendar APIs. Every request flows through a self-throttling pipeline with
per-API rate limiting, exponential backoff and transparent token refresh.

Set an access token first:

  workspace auth set-token

Then query the APIs:

  workspace drive ls --query "name contains 'report'"
  workspace sheets get <spreadsheet-id> "Sheet1!A1:C10"
  workspace calendar agenda --days 7`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&flagConfig, "config", "", "Path to the config file (default ~/.workspace-go/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(
		&flagVerbose, "verbose", "v", false, "Print rate limit, backoff and refresh diagnostics")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configPath resolves the config file location.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the CLI configuration.
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// clientConfig builds a client config for one API from the config file,
// failing early when no access token is set.
func clientConfig(api string) (google.ClientConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return google.ClientConfig{}, err
	}
	if cfg.AccessToken == "" {
		return google.ClientConfig{}, fmt.Errorf(
			"no access token configured; run 'workspace auth set-token' first")
	}
	return cfg.ClientConfig(api), nil
}
