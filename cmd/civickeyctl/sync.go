package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the municipality's content into the local store",
	Long:  "Serves the cached copy when it is fresh; --force always fetches. Parts that failed on the server are reported.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		muni, err := app.Municipality()
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		var snap models.Snapshot
		if force {
			snap, _, err = app.Syncer.Refresh(ctx, muni)
			if err != nil {
				return eris.Wrap(err, "sync")
			}
		} else {
			res, err := app.Syncer.Open(ctx, muni)
			if err != nil {
				return eris.Wrap(err, "sync")
			}
			if res.IsStale {
				fmt.Fprintln(os.Stderr, "Cached copy is stale; refreshing in the background.")
			}
			snap = res.Data
		}

		if _, err := app.Syncer.WasteItems(ctx, muni); err != nil {
			fmt.Fprintf(os.Stderr, "Waste items unavailable: %v\n", err)
		}

		formatSnapshotSummary(os.Stdout, snap)
		return nil
	},
}

// formatSnapshotSummary prints what a snapshot holds and which parts
// failed.
func formatSnapshotSummary(w io.Writer, snap models.Snapshot) {
	fmt.Fprintf(w, "Municipality:  %s\n", snap.MunicipalityID)
	if !snap.FetchedAt.IsZero() {
		fmt.Fprintf(w, "Fetched:       %s\n", snap.FetchedAt.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Zones:         %d\n", len(snap.Zones))
	if snap.DefaultZoneID != "" {
		fmt.Fprintf(w, "Default zone:  %s\n", snap.DefaultZoneID)
	}
	fmt.Fprintf(w, "Events:        %d\n", len(snap.Events))
	fmt.Fprintf(w, "Alerts:        %d\n", len(snap.Alerts))
	fmt.Fprintf(w, "Facilities:    %d\n", len(snap.Facilities))
	if snap.Schedule == nil {
		fmt.Fprintln(w, "Schedule:      none")
	}

	if snap.Complete() {
		return
	}
	parts := make([]string, 0, len(snap.Errors))
	for p := range snap.Errors {
		parts = append(parts, p)
	}
	sort.Strings(parts)
	fmt.Fprintln(w, "Incomplete:")
	for _, p := range parts {
		fmt.Fprintf(w, "  %-12s %s\n", p, snap.Errors[p])
	}
}

func init() {
	syncCmd.Flags().Bool("force", false, "fetch even when the cached copy is fresh")
	rootCmd.AddCommand(syncCmd)
}
