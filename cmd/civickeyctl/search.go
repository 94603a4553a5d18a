package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/civickey/civickey/internal/app/system/search"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find which bin an item goes in",
	Long:  "Searches the local waste-item catalog; prefix matches are listed first.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		items, err := app.Syncer.WasteItems(ctx, muni)
		if err != nil {
			return eris.Wrap(err, "load waste items")
		}
		// Bin names come from the schedule's collection types.
		var sched *models.Schedule
		if res, err := app.Cache.Load(ctx, muni); err == nil && res.Found {
			sched = res.Data.Schedule
		}

		query := strings.Join(args, " ")
		results := search.Search(query, items)
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "No items match %q.\n", query)
			return nil
		}
		return formatSearchResults(os.Stdout, results, sched, cfg.Locale)
	},
}

func formatSearchResults(w io.Writer, results []search.Result, sched *models.Schedule, locale string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tBIN\tNOTE")
	for _, r := range results {
		bin := r.Item.BinID
		if sched != nil {
			if ct, ok := sched.CollectionType(r.Item.BinID); ok {
				bin = ct.Name.In(locale)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Item.Name.In(locale), bin, r.Item.Note.In(locale))
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
