package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "workshop",
	Short: "Terminal client for live team pitch sessions",
	Long: `workshop connects to a session coordinator and follows the session
through its phases: lobby, team prep, presentations, voting and the final
leaderboard. Run with --role host for the host control panel.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("could not load .env file")
		}
	},
	RunE: runSession,
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete the identity stored on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupConsoleLogging(cfg)

		store, closeStore, err := openIdentityStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stored identity removed.")
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (YAML)")
	flags.String("db", "", "identity database path")

	run := rootCmd.Flags()
	run.String("role", "", "participant or host")
	run.String("timer-policy", "", "reseed or mirror (default depends on role)")
	run.String("transport", "", "websocket or nats")
	run.String("server", "", "coordinator websocket URL")
	run.String("session", "", "session id (nats transport)")
	run.String("join-url", "", "URL shown as a QR code on the login screen")
	run.String("status-addr", "", "serve session state on this address, e.g. :7070")
	run.String("name", "", "join under this name on start if no identity is stored")
	run.Bool("headless", false, "log screen updates instead of drawing the terminal UI")
	run.Bool("no-persist", false, "keep the identity in memory only")

	rootCmd.AddCommand(forgetCmd)
}
