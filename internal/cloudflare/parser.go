package cloudflare

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ResponseParser normalizes a raw API response body. Two implementations
// exist: RichParser walks the JSON envelope, TextParser falls back to
// pattern matching over the raw text. The parser is chosen once at startup;
// callers never branch on which one is active.
type ResponseParser interface {
	// Envelope reports whether the call succeeded and, when it did not, the
	// most specific error message recoverable from the body.
	Envelope(body []byte) (success bool, errorMessage string)
	// Zones extracts the zone list from a zone-list response body.
	Zones(body []byte) []Zone
	// RecordID extracts the created record's ID from a creation response body.
	RecordID(body []byte) string
}

// RichParser reads the documented JSON envelope: a boolean `success` field,
// an `errors` list of {message} objects and a `result` payload.
type RichParser struct{}

func (RichParser) Envelope(body []byte) (bool, string) {
	if gjson.GetBytes(body, "success").Bool() {
		return true, ""
	}
	msg := gjson.GetBytes(body, "errors.0.message").String()
	if msg == "" {
		msg = "Unknown error"
	}
	return false, msg
}

func (RichParser) Zones(body []byte) []Zone {
	var zones []Zone
	gjson.GetBytes(body, "result").ForEach(func(_, value gjson.Result) bool {
		zones = append(zones, Zone{
			ID:   value.Get("id").String(),
			Name: value.Get("name").String(),
		})
		return true
	})
	return zones
}

func (RichParser) RecordID(body []byte) string {
	return gjson.GetBytes(body, "result.id").String()
}

var (
	successMarker = regexp.MustCompile(`"success"\s*:\s*true`)
	idPattern     = regexp.MustCompile(`"id"\s*:\s*"([a-f0-9]{32})"`)
	namePattern   = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
)

// TextParser is the degraded path: it scrapes the body with substring and
// regexp matching instead of decoding it. Extraction is best-effort; on
// failure the whole body is surfaced so the operator can diagnose it.
type TextParser struct{}

func (TextParser) Envelope(body []byte) (bool, string) {
	if successMarker.Match(body) {
		return true, ""
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return false, "Unknown error"
	}
	return false, "unexpected API response: " + raw
}

// Zones pairs up id and name matches in document order. Zone IDs are 32 hex
// characters, which keeps record IDs and zone IDs from cross-matching but
// cannot distinguish nested objects; the rich parser should be preferred
// whenever exact extraction matters.
func (TextParser) Zones(body []byte) []Zone {
	ids := idPattern.FindAllSubmatch(body, -1)
	names := namePattern.FindAllSubmatch(body, -1)

	n := len(ids)
	if len(names) < n {
		n = len(names)
	}
	zones := make([]Zone, 0, n)
	for i := 0; i < n; i++ {
		zones = append(zones, Zone{
			ID:   string(ids[i][1]),
			Name: string(names[i][1]),
		})
	}
	return zones
}

func (TextParser) RecordID(body []byte) string {
	if m := idPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}
