package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/workspace-go/internal/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored access token",
	Long: `Store or inspect the access token used for API calls.

The CLI does not run an OAuth sign-in flow itself: obtain an access token
from your identity provider (for example the OAuth playground or gcloud)
and store it here.`,
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Store an access token",
	Long: `Store an access token in the config file.

When no token argument is given, the token is read from the terminal
without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSetToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an access token is configured",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authSetTokenCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSetToken(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Access token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = string(raw)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("access token must not be empty")
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.AccessToken = token
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token stored in %s\n", path)
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AccessToken == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No access token configured")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Access token configured")
	return nil
}
