package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Ends the session and forgets everything kept for it.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e env) error {
		session, err := e.loadSession()
		if errors.Is(err, errNoSession) {
			fmt.Println("Not logged in.")
			return e.forgetSession()
		}
		if err != nil {
			return err
		}

		if err := e.service.Logout(cmd.Context(), session); err != nil {
			slog.Warn("portal logout failed, the local session is discarded anyway", "err", err)
		}
		if err := e.forgetSession(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}),
}
