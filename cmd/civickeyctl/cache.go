package main

import (
	"fmt"
	"os"
	"time"

	"github.com/civickey/civickey/internal/client/offlinecache"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local copy",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the age of the cached content",
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
		snap, err := app.Cache.Load(ctx, muni)
		if err != nil {
			return err
		}
		items, err := app.Cache.LoadWasteItems(ctx, muni)
		if err != nil {
			return err
		}
		printEntry("content", snap.Found, snap.IsStale, snap.FetchedAt)
		printEntry("waste items", items.Found, items.IsStale, items.FetchedAt)
		fmt.Printf("cache version %d\n", offlinecache.CacheVersion)
		return nil
	},
}

func printEntry(name string, found, stale bool, at time.Time) {
	switch {
	case !found:
		fmt.Printf("%-12s not cached\n", name)
	case stale:
		fmt.Printf("%-12s stale, fetched %s ago\n", name, time.Since(at).Round(time.Second))
	default:
		fmt.Printf("%-12s fresh, fetched %s ago\n", name, time.Since(at).Round(time.Second))
	}
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached content of the municipality",
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
		if err := app.Cache.Clear(cmd.Context(), muni); err != nil {
			return eris.Wrap(err, "clear cache")
		}
		fmt.Fprintln(os.Stderr, "Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
