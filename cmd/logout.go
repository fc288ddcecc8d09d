package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/config"
	"github.com/therealaleph/dnsstcloudflare/internal/crypt"
	"github.com/therealaleph/dnsstcloudflare/internal/db"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Cloudflare credentials",
	Run:   executeLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func executeLogout(cmd *cobra.Command, args []string) {
	config.Cfg.APIEmail = ""
	config.Cfg.APIKey = ""
	if err := config.SaveConfig(); err != nil {
		println(ui.ErrorBox("Error clearing credentials.", err))
		os.Exit(1)
	}
	_ = db.InvalidateTags([]string{"zones"})
	_ = crypt.DeleteIdentity()
	println(ui.Success("You were logged out."))
}
