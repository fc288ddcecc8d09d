// Package tunnel plans the DNS record pair a tunnel endpoint needs: an A
// record pointing a throwaway label at the server, and an NS record
// delegating a second label to it.
package tunnel

import (
	"fmt"
	"regexp"

	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
)

// AutomaticTTL is Cloudflare's "automatic" TTL sentinel.
const AutomaticTTL = 1

var ipv4Shape = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}$`)

// LooksLikeIPv4 reports whether s has a dotted-quad shape. Octet ranges are
// deliberately not checked: a mistyped address only costs a warning, the
// value is submitted as entered either way.
func LooksLikeIPv4(s string) bool {
	return ipv4Shape.MatchString(s)
}

// Plan is the pair of records for one setup run. The NS record's content
// references the A record's name, which is why the A record must be created
// first and must succeed before the NS record is attempted.
type Plan struct {
	A  cloudflare.Record
	NS cloudflare.Record
}

// ARecord is the tunnel host record: labelA under zone, pointing at the
// server address as entered.
func ARecord(zone string, labelA rune, serverIP string) cloudflare.Record {
	return cloudflare.Record{
		Type:    "A",
		Name:    fmt.Sprintf("%c.%s", labelA, zone),
		Content: serverIP,
		Proxied: false,
		TTL:     AutomaticTTL,
	}
}

// NSRecord delegates labelB under zone to the A record identified by labelA.
func NSRecord(zone string, labelB, labelA rune) cloudflare.Record {
	return cloudflare.Record{
		Type:    "NS",
		Name:    fmt.Sprintf("%c.%s", labelB, zone),
		Content: fmt.Sprintf("%c.%s", labelA, zone),
		Proxied: false,
		TTL:     AutomaticTTL,
	}
}

// NewPlan builds the record pair for zone, with labelA fronting serverIP and
// labelB delegated to labelA's name. The two labels must differ; the caller
// enforces that when drawing them.
func NewPlan(zone string, labelA, labelB rune, serverIP string) Plan {
	return Plan{
		A:  ARecord(zone, labelA, serverIP),
		NS: NSRecord(zone, labelB, labelA),
	}
}
