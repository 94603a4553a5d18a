package main

import (
	"fmt"
	"os"

	"github.com/civickey/civickey/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfg    *cli.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "civickeyctl",
	Short: "Offline client for CivicKey municipal content",
	Long: "Keeps a local copy of a municipality's collection schedule, events, alerts and waste-item catalog, " +
		"searches it offline and schedules collection reminders.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := cli.Load(func(v *viper.Viper) error {
			for key, flag := range persistentFlagKeys {
				if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := cli.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// persistentFlagKeys maps config keys to the root flags that override them.
var persistentFlagKeys = map[string]string{
	"api.base_url": "api",
	"store.path":   "store",
	"municipality": "municipality",
	"zone":         "zone",
	"locale":       "locale",
	"log.level":    "log-level",
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "CivicKey server base URL (default https://civickey.ca)")
	rootCmd.PersistentFlags().String("store", "", "path of the local SQLite store (default civickey.db)")
	rootCmd.PersistentFlags().StringP("municipality", "m", "", "municipality ID, e.g. saint-lazare")
	rootCmd.PersistentFlags().String("zone", "", "collection zone ID")
	rootCmd.PersistentFlags().String("locale", "", "display locale: fr or en (default fr)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (default warn)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
