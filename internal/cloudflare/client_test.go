package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	creds := Credentials{Email: "ops@example.com", APIKey: "test-key"}
	opts = append([]Option{WithBaseURL(serverURL)}, opts...)
	return NewClient(creds, opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}
}

func TestAuthHeadersAttachedExactlyOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Values("X-Auth-Email"); len(got) != 1 || got[0] != "ops@example.com" {
			t.Errorf("X-Auth-Email = %v, want exactly one %q", got, "ops@example.com")
		}
		if got := r.Header.Values("X-Auth-Key"); len(got) != 1 || got[0] != "test-key" {
			t.Errorf("X-Auth-Key = %v, want exactly one %q", got, "test-key")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		writeJSON(t, w, zoneListBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.ListZones(context.Background()); err != nil {
		t.Fatalf("ListZones: %v", err)
	}
}

func TestListZonesPreservesProviderOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/zones" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(t, w, zoneListBody)
	}))
	defer srv.Close()

	for name, parser := range parsers() {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, srv.URL, WithParser(parser))
			zones, err := client.ListZones(context.Background())
			if err != nil {
				t.Fatalf("ListZones: %v", err)
			}
			want := []Zone{
				{ID: "023e105f4ecef8ad9ca31a8372d0c353", Name: "example.com"},
				{ID: "9de5069c5afe602b2ea0a04b66beb2c0", Name: "tunnel.dev"},
			}
			if diff := cmp.Diff(want, zones); diff != "" {
				t.Errorf("zones mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListZonesSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, errorBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListZones(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if !strings.Contains(apiErr.Message, "Invalid request headers") {
		t.Errorf("expected provider error message, got %q", apiErr.Message)
	}
}

func TestListZonesEmptyAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"success": true, "errors": [], "result": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListZones(context.Background())
	if !errors.Is(err, ErrNoZones) {
		t.Fatalf("expected ErrNoZones, got %v", err)
	}
}

func TestCreateRecordBody(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/zones/z1/dns_records" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		writeJSON(t, w, recordCreatedBody)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	rec := Record{Type: "A", Name: "q.example.com", Content: "203.0.113.5", Proxied: false, TTL: 1}
	id, err := client.CreateRecord(context.Background(), "z1", rec)
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if id != "372e67954025e0ba6aaa6d586b9e0b59" {
		t.Errorf("record ID = %q, want the created record's ID", id)
	}

	want := map[string]any{
		"type":    "A",
		"name":    "q.example.com",
		"content": "203.0.113.5",
		"proxied": false,
		"ttl":     float64(1),
	}
	if diff := cmp.Diff(want, captured); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRecordAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"success": false, "errors": [{"code": 81057, "message": "Record already exists."}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreateRecord(context.Background(), "z1", Record{Type: "NS", Name: "r.example.com", Content: "q.example.com", TTL: 1})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Record already exists.") {
		t.Errorf("expected provider message, got %q", err.Error())
	}
}

func TestVerifyCredentials(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"success": true, "errors": [], "result": {"id": "372e67954025e0ba6aaa6d586b9e0b59"}}`, false},
		{"invalid", errorBody, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/user" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				writeJSON(t, w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			err := client.VerifyCredentials(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
