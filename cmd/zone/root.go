package zone

import (
	"github.com/spf13/cobra"
)

var ZoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Inspect zones in the account",
}

func init() {
	ZoneCmd.PersistentFlags().Bool("no-cache", false, "Bypass the local zone cache")
}
