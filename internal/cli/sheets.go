package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/workspace-go/internal/workspace"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Google Sheets operations",
}

var sheetsGetCmd = &cobra.Command{
	Use:   "get [spreadsheet-id] [range]",
	Short: "Read cell values from a range",
	Args:  cobra.ExactArgs(2),
	RunE:  runSheetsGet,
}

var sheetsAppendCmd = &cobra.Command{
	Use:   "append [spreadsheet-id] [range] [cells...]",
	Short: "Append one row of values",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runSheetsAppend,
}

var sheetsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List spreadsheets",
	RunE:  runSheetsLs,
}

var sheetsLsMax int

func init() {
	sheetsLsCmd.Flags().IntVar(&sheetsLsMax, "max", 50, "Maximum number of spreadsheets to list")

	sheetsCmd.AddCommand(sheetsGetCmd)
	sheetsCmd.AddCommand(sheetsAppendCmd)
	sheetsCmd.AddCommand(sheetsLsCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func runSheetsGet(cmd *cobra.Command, args []string) error {
	cfg, err := clientConfig(string(workspace.APISheets))
	if err != nil {
		return err
	}
	client := workspace.NewSheets(cfg)

	vr, err := client.GetValues(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	for _, row := range vr.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(cells, "\t"))
	}
	return nil
}

func runSheetsAppend(cmd *cobra.Command, args []string) error {
	cfg, err := clientConfig(string(workspace.APISheets))
	if err != nil {
		return err
	}
	client := workspace.NewSheets(cfg)

	row := make([]any, 0, len(args)-2)
	for _, cell := range args[2:] {
		row = append(row, cell)
	}

	resp, err := client.AppendRow(cmd.Context(), args[0], args[1], row)
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Appended %d cells to %s\n",
			resp.Updates.UpdatedCells, resp.Updates.UpdatedRange)
	}
	return nil
}

func runSheetsLs(cmd *cobra.Command, _ []string) error {
	cfg, err := clientConfig(string(workspace.APISheets))
	if err != nil {
		return err
	}
	client := workspace.NewSheets(cfg)

	files, err := client.ListSpreadsheets(cmd.Context(), sheetsLsMax)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", f.ID, f.ModifiedTime, f.Name)
	}
	return nil
}
