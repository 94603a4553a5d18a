package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/civickey/civickey/internal/cli"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Manage collection reminders on this device",
	Long:  "Reminders fire the evening before each collection of the zone and before special collections.",
}

// -- reminders sync --

var remindersSyncCmd = &cobra.Command{
	Use:   "sync [zone-id]",
	Short: "Schedule the reminders of a zone, replacing any previous ones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, snap, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		zoneID := pickZone(args, cfg.Zone, snap)
		if zoneID == "" {
			return eris.New("no zone: pass a zone ID (see `civickeyctl zones`)")
		}
		if snap.Schedule == nil {
			return eris.New("the municipality has not published a collection schedule")
		}
		sched := app.Reminders(snap.MunicipalityID)
		if err := sched.Sync(ctx, *snap.Schedule, zoneID, cfg.Locale); err != nil {
			return eris.Wrap(err, "schedule reminders")
		}
		keys, err := sched.Keys(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Scheduled %d reminders for zone %s.\n", len(keys), zoneID)
		return listTriggers(cmd, app)
	},
}

// -- reminders list --

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck
		return listTriggers(cmd, app)
	},
}

// -- reminders clear --

var remindersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Cancel every reminder of the municipality",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		muni, err := app.Municipality()
		if err != nil {
			return err
		}
		if err := app.Reminders(muni).CancelAll(cmd.Context()); err != nil {
			return eris.Wrap(err, "cancel reminders")
		}
		fmt.Fprintln(os.Stderr, "Reminders cancelled.")
		return nil
	},
}

func listTriggers(cmd *cobra.Command, app *cli.App) error {
	triggers, err := app.Notifier.Triggers(cmd.Context())
	if err != nil {
		return err
	}
	return formatTriggers(os.Stdout, triggers)
}

func formatTriggers(w io.Writer, triggers []cli.Trigger) error {
	if len(triggers) == 0 {
		fmt.Fprintln(w, "No reminders scheduled.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tREMINDER")
	for _, t := range triggers {
		fmt.Fprintf(tw, "%s\t%s\n", t.When(), t.Note.Title)
	}
	return tw.Flush()
}

func init() {
	remindersCmd.AddCommand(remindersSyncCmd)
	remindersCmd.AddCommand(remindersListCmd)
	remindersCmd.AddCommand(remindersClearCmd)
	rootCmd.AddCommand(remindersCmd)
}
