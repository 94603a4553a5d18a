package main

import (
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Back-office session commands",
}

// -- admin shell --

var adminShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive admin session that signs out when idle",
	Long: "Signs in with admin.email and admin.password (CIVICKEYCTL_ADMIN_EMAIL, CIVICKEYCTL_ADMIN_PASSWORD) " +
		"and reads commands from standard input: me, switch [municipality-id], quit. " +
		"The session is signed out after admin.idle_timeout without a command.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		email := cfg.Admin.Email
		if f, _ := cmd.Flags().GetString("email"); f != "" {
			email = f
		}
		return app.AdminShell().Run(cmd.Context(), email, cfg.Admin.Password, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	adminShellCmd.Flags().String("email", "", "admin email (overrides admin.email)")
	adminCmd.AddCommand(adminShellCmd)
	rootCmd.AddCommand(adminCmd)
}
