package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/workspace-go/internal/google/drive"
	"github.com/custodia-labs/workspace-go/internal/workspace"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Google Drive operations",
}

var driveLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files",
	RunE:  runDriveLs,
}

var driveQuotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show account storage quota",
	RunE:  runDriveQuota,
}

var (
	driveLsQuery   string
	driveLsOrderBy string
	driveLsMax     int
)

func init() {
	driveLsCmd.Flags().StringVarP(&driveLsQuery, "query", "q", "", "Drive search expression")
	driveLsCmd.Flags().StringVar(&driveLsOrderBy, "order-by", "modifiedTime desc", "Sort order")
	driveLsCmd.Flags().IntVar(&driveLsMax, "max", 100, "Maximum number of files to list")

	driveCmd.AddCommand(driveLsCmd)
	driveCmd.AddCommand(driveQuotaCmd)
	rootCmd.AddCommand(driveCmd)
}

func runDriveLs(cmd *cobra.Command, _ []string) error {
	cfg, err := clientConfig(string(workspace.APIDrive))
	if err != nil {
		return err
	}
	client := workspace.NewDrive(cfg)

	files, err := client.ListAll(cmd.Context(), drive.ListOptions{
		Query:   driveLsQuery,
		OrderBy: driveLsOrderBy,
	}, driveLsMax)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", f.ID, f.ModifiedTime, f.Name)
	}
	return nil
}

func runDriveQuota(cmd *cobra.Command, _ []string) error {
	cfg, err := clientConfig(string(workspace.APIDrive))
	if err != nil {
		return err
	}
	client := workspace.NewDrive(cfg)

	about, err := client.About(cmd.Context())
	if err != nil {
		return err
	}

	if about.User != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\n", about.User.EmailAddress)
	}
	if q := about.StorageQuota; q != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Usage:   %d bytes\n", q.Usage)
		if q.Limit > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Limit:   %d bytes\n", q.Limit)
		}
	}
	return nil
}
