package commands

import (
	"fmt"
	"vtopassist-backend/internal/sessionstore"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var keygenLength *int

func init() {
	keygenLength = keygenCmd.Flags().Int("length", 48, "The length of the secret.")
	rootCmd.AddCommand(keygenCmd)
}

var keygenCmd = &cobra.Command{
	Use:   "keygen [--length <n>]",
	Short: "Prints a random secret suitable for session_secrets.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := newSecret(*keygenLength)
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	},
}

func newSecret(length int) (string, error) {
	if length < sessionstore.MinSecretLength {
		return "", fmt.Errorf("secrets must be at least %d characters long, got %d", sessionstore.MinSecretLength, length)
	}
	return random.String(length)
}
