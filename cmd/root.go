package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/cmd/zone"
	"github.com/therealaleph/dnsstcloudflare/internal/constants"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:     "dnsst",
	Short:   "Prepare a Cloudflare zone for a DNS tunnel endpoint",
	Long:    ``,
	Version: constants.Version,
}

func init() {
	rootCmd.PersistentFlags().Bool("plain", false, "Parse API responses with text matching instead of JSON")
	rootCmd.AddCommand(zone.ZoneCmd)
}

func configureColorScheme(_ lipgloss.LightDarkFunc) fang.ColorScheme {
	return ui.FangTheme()
}

func Execute() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {}), fang.WithColorSchemeFunc(configureColorScheme), fang.WithVersion(constants.Version)); err != nil {
		println(ui.ErrorBox("Error executing command", err))
		os.Exit(1)
	}
}
