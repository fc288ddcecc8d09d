package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/config"
	"github.com/therealaleph/dnsstcloudflare/internal/db"
	"github.com/therealaleph/dnsstcloudflare/internal/executor"
	"github.com/therealaleph/dnsstcloudflare/internal/prompt"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and store Cloudflare credentials",
	Run:   executeLogin,
}

var (
	loginEmail  string
	loginApiKey string
)

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Cloudflare account email")
	loginCmd.Flags().StringVarP(&loginApiKey, "api-key", "k", "", "Cloudflare Global API Key")

	rootCmd.AddCommand(loginCmd)
}

func executeLogin(cmd *cobra.Command, args []string) {
	creds := prompt.Credentials{Email: loginEmail, APIKey: loginApiKey}
	if creds.Email == "" || creds.APIKey == "" {
		var err error
		creds, err = prompt.RunLoginPrompt()
		if err != nil {
			if errors.Is(err, prompt.ErrUserCancelled) {
				return
			}
			println(ui.ErrorBox("Error reading login credentials.", err))
			os.Exit(1)
		}
	}

	if err := checkCredentials(cmd, creds); err != nil {
		println(ui.ErrorBox("Invalid credentials, could not log in.", err))
		os.Exit(1)
	}

	config.Cfg.APIEmail = creds.Email
	config.Cfg.APIKey = config.EncryptedString(creds.APIKey)
	if err := config.SaveConfig(); err != nil {
		println(ui.ErrorBox("Error saving config.", err))
		os.Exit(1)
	}
	_ = db.InvalidateTags([]string{"zones"})
	println(ui.Success("You were successfully logged in."))
}

func checkCredentials(cmd *cobra.Command, creds prompt.Credentials) error {
	client := cloudflare.NewClient(
		cloudflare.Credentials{Email: creds.Email, APIKey: creds.APIKey},
		cloudflare.WithParser(executor.ParserFromFlags(cmd)),
	)
	return client.VerifyCredentials(context.Background())
}
