package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming events",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, snap, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck
		return formatEvents(os.Stdout, snap.Events, cfg.Locale)
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List active alerts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, snap, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck
		return formatAlerts(os.Stdout, snap.Alerts, cfg.Locale)
	},
}

func formatEvents(w io.Writer, events []models.Event, locale string) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No upcoming events.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tEVENT\tLOCATION")
	for _, e := range events {
		date := e.Date
		if e.EndDate != "" && e.EndDate != e.Date {
			date += " to " + e.EndDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", date, e.Time, e.Title.In(locale), e.Location)
	}
	return tw.Flush()
}

func formatAlerts(w io.Writer, alerts []models.Alert, locale string) error {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No active alerts.")
		return nil
	}
	for _, a := range alerts {
		fmt.Fprintf(w, "[%s] %s\n    %s\n", a.Type, a.Title.In(locale), a.Message.In(locale))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(alertsCmd)
}
