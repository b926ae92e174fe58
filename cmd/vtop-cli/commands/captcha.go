package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var captchaOut *string

func init() {
	captchaOut = captchaCmd.Flags().String("out", "", "Where to write the image, defaults to captcha.<ext>.")
	rootCmd.AddCommand(captchaCmd)
}

var captchaCmd = &cobra.Command{
	Use:   "captcha [--out <path/to/image>]",
	Short: "Starts a login by fetching the CAPTCHA that has to be solved.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e env) error {
		captcha, err := e.service.RequestCaptcha(cmd.Context())
		if err != nil {
			return err
		}

		out := *captchaOut
		if out == "" {
			ext := strings.TrimPrefix(captcha.MimeType, "image/")
			if ext == "" || ext == captcha.MimeType {
				ext = "img"
			}
			out = "captcha." + ext
		}
		if err := os.WriteFile(out, captcha.Image, 0o644); err != nil {
			return err
		}
		if err := e.saveSession(captcha.Session); err != nil {
			return err
		}

		fmt.Printf("CAPTCHA written to %s, solve it and run `vtop-cli login --captcha <solution>`.\n", out)
		return nil
	}),
}
