package commands

import (
	"errors"
	"fmt"
	"os"
	"vtopassist-backend/internal/scrapers/vtop"

	"github.com/spf13/cobra"
)

var (
	loginUsername *string
	loginPassword *string
	loginCaptcha  *string
	loginRemember *bool
)

func init() {
	loginUsername = loginCmd.Flags().String("username", "", "The portal username, defaults to the saved one.")
	loginPassword = loginCmd.Flags().String("password", "", "The portal password, defaults to $VTOP_PASSWORD or the saved one.")
	loginCaptcha = loginCmd.Flags().String("captcha", "", "The solution of the CAPTCHA fetched by `vtop-cli captcha`.")
	loginRemember = loginCmd.Flags().Bool("remember", false, "Keep the credentials in the sealed session for re-authentication.")
	loginCmd.MarkFlagRequired("captcha")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login --captcha <solution> [--username <username>] [--password <password>] [--remember]",
	Short: "Completes a login started by `vtop-cli captcha`.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e env) error {
		pending, err := e.loadSession()
		if err != nil {
			return err
		}
		if pending.State != vtop.StateCaptchaIssued {
			return errors.New("no pending login, run `vtop-cli captcha` first")
		}

		username := *loginUsername
		password := *loginPassword
		if password == "" {
			password = os.Getenv("VTOP_PASSWORD")
		}
		if saved := pending.Credentials; saved != nil {
			if username == "" {
				username = saved.LoginID
			}
			if password == "" {
				password = saved.Password
			}
		}
		if username == "" || password == "" {
			return errors.New("both a username and a password are needed")
		}

		result, err := e.service.Login(cmd.Context(), vtop.LoginRequest{
			SessionID:           pending.ID,
			CSRF:                pending.CSRF,
			Sticky:              pending.Sticky,
			Username:            username,
			Password:            password,
			CaptchaSolution:     *loginCaptcha,
			RememberCredentials: *loginRemember || pending.Credentials != nil,
		})
		if err != nil {
			return err
		}
		if !result.Success {
			// the captcha is spent either way
			e.forgetSession()
			return fmt.Errorf("login rejected: %s", result.Message)
		}

		if err := e.saveSession(result.Session); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s).\n", result.Identity.DisplayName, result.Identity.RegistrationNumber)
		return nil
	}),
}
