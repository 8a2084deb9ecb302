package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/workspace-go/internal/google/calendar"
	"github.com/custodia-labs/workspace-go/internal/workspace"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Google Calendar operations",
}

var calendarAgendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Show upcoming events",
	RunE:  runCalendarAgenda,
}

var calendarQuickAddCmd = &cobra.Command{
	Use:   "quick-add [text]",
	Short: "Create an event from a natural-language description",
	Long: `Create an event from a natural-language description, for example:

  workspace calendar quick-add "Lunch with Ana tomorrow at noon"`,
	Args: cobra.ExactArgs(1),
	RunE: runCalendarQuickAdd,
}

var (
	calendarID         string
	calendarAgendaDays int
	calendarAgendaMax  int
)

func init() {
	calendarCmd.PersistentFlags().StringVar(
		&calendarID, "calendar", calendar.PrimaryCalendar, "Calendar ID")
	calendarAgendaCmd.Flags().IntVar(&calendarAgendaDays, "days", 7, "Window in days")
	calendarAgendaCmd.Flags().IntVar(&calendarAgendaMax, "max", 50, "Maximum number of events")

	calendarCmd.AddCommand(calendarAgendaCmd)
	calendarCmd.AddCommand(calendarQuickAddCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarAgenda(cmd *cobra.Command, _ []string) error {
	cfg, err := clientConfig(string(workspace.APICalendar))
	if err != nil {
		return err
	}
	client := workspace.NewCalendar(cfg)

	events, err := client.UpcomingEvents(cmd.Context(), calendarID, calendarAgendaDays, calendarAgendaMax)
	if err != nil {
		return err
	}

	for _, ev := range events {
		start := ""
		if ev.Start != nil {
			start = ev.Start.DateTime
			if start == "" {
				start = ev.Start.Date
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", start, ev.Summary)
	}
	return nil
}

func runCalendarQuickAdd(cmd *cobra.Command, args []string) error {
	cfg, err := clientConfig(string(workspace.APICalendar))
	if err != nil {
		return err
	}
	client := workspace.NewCalendar(cfg)

	ev, err := client.QuickAdd(cmd.Context(), calendarID, args[0], calendar.SendUpdatesNone)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created event %s: %s\n", ev.ID, ev.Summary)
	return nil
}
