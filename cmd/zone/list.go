package zone

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/executor"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
	"github.com/therealaleph/dnsstcloudflare/internal/ui/response"
)

var zonesKey = executor.NewKey[[]cloudflare.Zone]("zones")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all zones the credentials can see",
	Run: executor.New().
		WithNoCache().
		WithClient().
		Step(executor.NewStep(zonesKey, "Fetching zones").Func(fetchZones).Cache("zones")).
		Display(printZonesList).
		Run(),
}

func init() {
	ZoneCmd.AddCommand(listCmd)
}

func fetchZones(ctx *executor.Context, _ chan<- string) ([]cloudflare.Zone, error) {
	return ctx.Client.ListZones(context.Background())
}

func printZonesList(ctx *executor.Context) {
	rb := response.New()
	if ctx.Error != nil {
		rb.Error("Error fetching zones", ctx.Error).Display()
		return
	}

	zones := executor.Get(ctx, zonesKey)

	rb.Title("Accessible Zones").
		Summary("Total:", len(zones)).
		NoItemsMessage("No zones found")

	for i, z := range zones {
		rb.AddItem(fmt.Sprintf("Zone %d: %s", i+1, z.Name), response.NewItemContent().
			Add("Name:", ui.Text(z.Name)).
			Add("ID:", ui.Muted(z.ID)).
			String())
	}

	rb.FooterSuccessf("Found %d accessible zone(s) %s", len(zones), ui.Muted(fmt.Sprintf("(took %v)", ctx.Duration))).Display()
}
