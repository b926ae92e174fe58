package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Shows the saved session and the records kept for it.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e env) error {
		session, err := e.loadSession()
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendRows([]table.Row{
			{"Name", session.Identity.DisplayName},
			{"Registration number", session.Identity.RegistrationNumber},
			{"Login", session.Identity.LoginID},
			{"State", session.State},
			{"Expires", session.ExpiresAt.Local().Format(time.DateTime)},
			{"Re-authentication", session.Credentials != nil},
		})
		t.Render()

		entries, err := e.service.Snapshots(cmd.Context(), session.Identity.RegistrationNumber)
		if err != nil || len(entries) == 0 {
			return err
		}
		kept := newTable()
		kept.SetTitle("Last good copies")
		kept.AppendHeader(table.Row{"Key", "Kind", "Revision", "Changed", "Captured"})
		for _, entry := range entries {
			kept.AppendRow(table.Row{
				entry.Key,
				entry.Kind,
				entry.Revision,
				entry.ChangedAt.Local().Format(time.DateTime),
				entry.CapturedAt.Local().Format(time.DateTime),
			})
		}
		kept.Render()
		return nil
	}),
}
