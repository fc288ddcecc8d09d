package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/config"
	"github.com/therealaleph/dnsstcloudflare/internal/db"
	"github.com/therealaleph/dnsstcloudflare/internal/executor"
	"github.com/therealaleph/dnsstcloudflare/internal/label"
	"github.com/therealaleph/dnsstcloudflare/internal/prompt"
	"github.com/therealaleph/dnsstcloudflare/internal/tunnel"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
	"github.com/therealaleph/dnsstcloudflare/internal/ui/response"
)

// stagedZonesKey is where the fetched zone list is parked between the
// listing and selection steps. The "zones" tag is invalidated when the run
// ends, success or failure, so the staging never survives a run.
const stagedZonesKey = "setup:staged-zones"

type createdRecord struct {
	Record cloudflare.Record `json:"record"`
	ID     string            `json:"id"`
}

var (
	zonesKey    = executor.NewKey[[]cloudflare.Zone]("zones")
	zoneKey     = executor.NewKey[cloudflare.Zone]("selectedZone")
	serverIPKey = executor.NewKey[string]("serverIP")
	aRecordKey  = executor.NewKey[createdRecord]("aRecord")
	nsRecordKey = executor.NewKey[createdRecord]("nsRecord")
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the A and NS record pair for a DNS tunnel",
	Long: `Creates two records in a zone you pick: an A record with a random
single-letter name pointing at your tunnel server, and an NS record with a
second random letter delegating to that A record.`,
	Args: cobra.NoArgs,
	Run: executor.New().
		Init(collectCredentials).
		Step(executor.NewStep(zonesKey, "Fetching zones").Func(fetchZones)).
		Init(selectZone).
		Init(collectServerIP).
		Step(executor.NewStep(aRecordKey, "Creating A record").Func(createARecord)).
		Step(executor.NewStep(nsRecordKey, "Creating NS record").Func(createNSRecord)).
		Invalidates(func(ctx *executor.Context) []string {
			return []string{"zones"}
		}).
		Display(printSetupResult).
		Run(),
}

func init() {
	setupCmd.Flags().String("email", "", "Cloudflare account email (skips the prompt)")
	setupCmd.Flags().String("api-key", "", "Cloudflare Global API Key (skips the prompt)")
	setupCmd.Flags().String("zone", "", "Zone name or ID to use (skips the selection prompt)")
	setupCmd.Flags().String("ip", "", "Tunnel server IPv4 address (skips the prompt)")

	rootCmd.AddCommand(setupCmd)
}

// collectCredentials resolves credentials from flags, then stored config,
// then an interactive prompt, and builds the API client with the parser
// picked for this run.
func collectCredentials(ctx *executor.Context) error {
	email, _ := ctx.Cmd.Flags().GetString("email")
	apiKey, _ := ctx.Cmd.Flags().GetString("api-key")

	if email == "" || apiKey == "" {
		if err := config.LoadConfig(); err == nil {
			if email == "" {
				email = config.Cfg.APIEmail
			}
			if apiKey == "" {
				apiKey = string(config.Cfg.APIKey)
			}
		}
	}

	if email == "" || apiKey == "" {
		creds, err := prompt.RunCredentialsPrompt()
		if err != nil {
			return err
		}
		email = creds.Email
		apiKey = creds.APIKey
	}

	email = strings.TrimSpace(email)
	apiKey = strings.TrimSpace(apiKey)
	if email == "" {
		return fmt.Errorf("%w: email", prompt.ErrEmptyInput)
	}
	if apiKey == "" {
		return fmt.Errorf("%w: API key", prompt.ErrEmptyInput)
	}

	if plain, _ := ctx.Cmd.Flags().GetBool("plain"); plain {
		fmt.Println(ui.Warning("Text-fallback parsing active, API responses are matched by pattern instead of decoded"))
	}

	ctx.Client = cloudflare.NewClient(
		cloudflare.Credentials{Email: email, APIKey: apiKey},
		cloudflare.WithParser(executor.ParserFromFlags(ctx.Cmd)),
	)
	return nil
}

func fetchZones(ctx *executor.Context, _ chan<- string) ([]cloudflare.Zone, error) {
	zones, err := ctx.Client.ListZones(context.Background())
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(zones); err == nil {
		_ = db.Set(db.CacheBucket, []byte(stagedZonesKey), data)
		_ = db.AddTagsToKey(stagedZonesKey, []string{"zones"})
	}
	return zones, nil
}

func selectZone(ctx *executor.Context) error {
	zones := executor.Get(ctx, zonesKey)

	if identifier, _ := ctx.Cmd.Flags().GetString("zone"); identifier != "" {
		for _, z := range zones {
			if z.Name == identifier || z.ID == identifier {
				executor.Set(ctx, zoneKey, z)
				return nil
			}
		}
		return fmt.Errorf("zone %q not found in this account", identifier)
	}

	input, err := prompt.RunZoneSelectionPrompt(zones)
	if err != nil {
		return err
	}
	n, err := prompt.ParseSelection(input, len(zones))
	if err != nil {
		return err
	}
	executor.Set(ctx, zoneKey, zones[n-1])
	return nil
}

func collectServerIP(ctx *executor.Context) error {
	ip, _ := ctx.Cmd.Flags().GetString("ip")
	if ip == "" {
		var err error
		ip, err = prompt.RunServerIPPrompt()
		if err != nil {
			return err
		}
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return fmt.Errorf("%w: server IP", prompt.ErrEmptyInput)
	}
	if !tunnel.LooksLikeIPv4(ip) {
		fmt.Println(ui.Warning(fmt.Sprintf("%q does not look like an IPv4 address, using it anyway", ip)))
	}
	executor.Set(ctx, serverIPKey, ip)
	return nil
}

func createARecord(ctx *executor.Context, _ chan<- string) (createdRecord, error) {
	zone := executor.Get(ctx, zoneKey)
	serverIP := executor.Get(ctx, serverIPKey)

	rec := tunnel.ARecord(zone.Name, label.Generate(nil, 0), serverIP)
	id, err := ctx.Client.CreateRecord(context.Background(), zone.ID, rec)
	if err != nil {
		return createdRecord{}, err
	}
	return createdRecord{Record: rec, ID: id}, nil
}

// createNSRecord runs only after the A record succeeded; its content
// references the A record's name, and the delegation label is resampled
// until it differs from the A label.
func createNSRecord(ctx *executor.Context, _ chan<- string) (createdRecord, error) {
	zone := executor.Get(ctx, zoneKey)
	aRecord := executor.Get(ctx, aRecordKey)

	labelA := rune(aRecord.Record.Name[0])
	rec := tunnel.NSRecord(zone.Name, label.Generate(nil, labelA), labelA)
	id, err := ctx.Client.CreateRecord(context.Background(), zone.ID, rec)
	if err != nil {
		return createdRecord{}, err
	}
	return createdRecord{Record: rec, ID: id}, nil
}

func printSetupResult(ctx *executor.Context) {
	rb := response.New()

	if ctx.Error != nil {
		rb.Error("Setup failed", ctx.Error).Display()
		if executor.Has(ctx, aRecordKey) {
			aRecord := executor.Get(ctx, aRecordKey)
			fmt.Println(ui.Warning(fmt.Sprintf("The A record %s was already created and was left in place.", aRecord.Record.Name)))
		}
		return
	}

	zone := executor.Get(ctx, zoneKey)
	aRecord := executor.Get(ctx, aRecordKey)
	nsRecord := executor.Get(ctx, nsRecordKey)

	rb.Title("Tunnel DNS Setup").
		Summary("Zone:", zone.Name).
		Summary("Server:", aRecord.Record.Content).
		AddItem("A Record", response.NewItemContent().
			Add("Name:", ui.Text(aRecord.Record.Name)).
			Add("Content:", ui.Text(aRecord.Record.Content)).
			Add("ID:", ui.Muted(aRecord.ID)).
			String()).
		AddItem("NS Record", response.NewItemContent().
			Add("Name:", ui.Text(nsRecord.Record.Name)).
			Add("Content:", ui.Text(nsRecord.Record.Content)).
			Add("ID:", ui.Muted(nsRecord.ID)).
			String()).
		FooterSuccessf("Tunnel records ready. Point your tunnel tool at %s %s", nsRecord.Record.Name, ui.Muted(fmt.Sprintf("(took %v)", ctx.Duration))).
		Display()
}
