package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/civickey/civickey/internal/cli"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [zone-id]",
	Short: "Show the collection days of a zone",
	Long:  "Uses the local copy. The zone defaults to --zone, then to the municipality's only zone.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, snap, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		zoneID := pickZone(args, cfg.Zone, snap)
		if zoneID == "" {
			return eris.New("no zone: pass a zone ID (see `civickeyctl zones`)")
		}
		return formatZoneSchedule(os.Stdout, snap, zoneID, cfg.Locale)
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the collection zones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, snap, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, z := range snap.Zones {
			fmt.Fprintf(tw, "%s\t%s\n", z.ZoneID, z.Name.In(cfg.Locale))
		}
		return tw.Flush()
	},
}

// openSnapshot opens the app and returns the municipality's cached
// snapshot, fetching it when nothing is cached.
func openSnapshot(cmd *cobra.Command) (*cli.App, models.Snapshot, error) {
	app, err := openApp(cmd)
	if err != nil {
		return nil, models.Snapshot{}, err
	}
	muni, err := app.Municipality()
	if err != nil {
		_ = app.Close()
		return nil, models.Snapshot{}, err
	}
	res, err := app.Syncer.Open(cmd.Context(), muni)
	if err != nil {
		_ = app.Close()
		return nil, models.Snapshot{}, eris.Wrap(err, "load content")
	}
	return app, res.Data, nil
}

func pickZone(args []string, configured string, snap models.Snapshot) string {
	switch {
	case len(args) > 0:
		return args[0]
	case configured != "":
		return configured
	}
	return snap.DefaultZoneID
}

// formatZoneSchedule prints one line per collection type of the zone and
// the special collections that apply to it.
func formatZoneSchedule(w io.Writer, snap models.Snapshot, zoneID, locale string) error {
	if snap.Schedule == nil {
		return eris.New("the municipality has not published a collection schedule")
	}
	rules, ok := snap.Schedule.ForZone(zoneID)
	if !ok {
		return eris.Errorf("zone %q has no collection schedule", zoneID)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tDAY\tFREQUENCY")
	for _, ct := range snap.Schedule.CollectionTypes {
		rule, ok := rules[ct.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ct.Name.In(locale), time.Weekday(rule.DayOfWeek), rule.Frequency)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	special := snap.Schedule.SpecialCollectionsFor(zoneID)
	if len(special) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SPECIAL COLLECTION\tDATE")
	for _, sc := range special {
		fmt.Fprintf(tw, "%s\t%s\n", sc.Name.In(locale), sc.Date)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(zonesCmd)
}
