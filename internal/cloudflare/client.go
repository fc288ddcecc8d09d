package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/therealaleph/dnsstcloudflare/internal/config"
	"github.com/therealaleph/dnsstcloudflare/internal/constants"
)

const BaseURL = "https://api.cloudflare.com/client/v4"

var ProjectURL = "https://github.com/therealaleph/dnsstcloudflare"

// ErrNoZones is returned by ListZones when the account has no zones at all.
var ErrNoZones = errors.New("no zones found for this account")

// APIError is a failure reported by the Cloudflare API itself, as opposed to
// a transport-level error. Message holds the most specific diagnostic the
// active parser could recover from the response body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Credentials is the legacy email + global API key pair. The tunnel setup
// flow authenticates every request with the X-Auth-Email and X-Auth-Key
// headers rather than a scoped token.
type Credentials struct {
	Email  string
	APIKey string
}

// Zone is a DNS zone as returned by the API, in provider order.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is a DNS record to be created. The tool only ever creates A and NS
// records with proxying off and automatic TTL.
type Record struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

type Client struct {
	creds   Credentials
	baseURL string
	http    *http.Client
	parser  ResponseParser
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithParser(p ResponseParser) Option {
	return func(c *Client) { c.parser = p }
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:   creds,
		baseURL: BaseURL,
		http:    http.DefaultClient,
		parser:  RichParser{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientFromConfig builds a client from stored credentials. It fails when no
// legacy credentials have been saved yet.
func ClientFromConfig(opts ...Option) (*Client, error) {
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	if config.Cfg.APIEmail == "" || config.Cfg.APIKey == "" {
		return nil, errors.New("you need to login first. Use `dnsst login` for that")
	}
	creds := Credentials{Email: config.Cfg.APIEmail, APIKey: string(config.Cfg.APIKey)}
	return NewClient(creds, opts...), nil
}

func UserAgent() string {
	return fmt.Sprintf("dnsstcloudflare/%s (%s; %s) +%s", constants.Version, runtime.GOOS, runtime.GOARCH, ProjectURL)
}

// do issues one authenticated request and returns the raw response body.
// Success or failure of the API call itself is the parser's business.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Auth-Email", c.creds.Email)
	req.Header.Set("X-Auth-Key", c.creds.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}

// checkEnvelope turns an unsuccessful API response into an *APIError.
func (c *Client) checkEnvelope(raw []byte) error {
	success, msg := c.parser.Envelope(raw)
	if success {
		return nil
	}
	return &APIError{Message: msg}
}

// ListZones fetches every zone the account can see, preserving the order the
// API returned them in.
func (c *Client) ListZones(ctx context.Context) ([]Zone, error) {
	raw, err := c.do(ctx, http.MethodGet, "/zones", nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching zones: %w", err)
	}
	if err := c.checkEnvelope(raw); err != nil {
		return nil, err
	}
	zones := c.parser.Zones(raw)
	if len(zones) == 0 {
		return nil, ErrNoZones
	}
	return zones, nil
}

// CreateRecord creates one DNS record in the given zone and returns the new
// record's ID. Records are never updated or deleted by this tool.
func (c *Client) CreateRecord(ctx context.Context, zoneID string, rec Record) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/zones/%s/dns_records", zoneID), rec)
	if err != nil {
		return "", fmt.Errorf("error creating %s record: %w", rec.Type, err)
	}
	if err := c.checkEnvelope(raw); err != nil {
		return "", err
	}
	return c.parser.RecordID(raw), nil
}

// VerifyCredentials checks the credential pair against the user endpoint.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	raw, err := c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return err
	}
	return c.checkEnvelope(raw)
}
