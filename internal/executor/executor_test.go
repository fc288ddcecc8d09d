package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/tunnel"
)

func TestPipelineShortCircuitsOnError(t *testing.T) {
	firstKey := NewKey[string]("first")
	secondKey := NewKey[string]("second")
	boom := errors.New("boom")
	secondRan := false

	b := New().
		Step(NewStep(firstKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			return "", boom
		}).Silent()).
		Step(NewStep(secondKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			secondRan = true
			return "ran", nil
		}).Silent())

	ctx := b.execute(&cobra.Command{Use: "test"}, nil)

	if !errors.Is(ctx.Error, boom) {
		t.Fatalf("ctx.Error = %v, want %v", ctx.Error, boom)
	}
	if secondRan {
		t.Error("second step ran after the first failed")
	}
	if Has(ctx, secondKey) {
		t.Error("second step's result was stored")
	}
}

// The NS record must never be attempted when the A record creation failed.
func TestNSCreationNotIssuedAfterAFailure(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "errors": [{"code": 10000, "message": "Authentication error"}]}`))
	}))
	defer srv.Close()

	client := cloudflare.NewClient(
		cloudflare.Credentials{Email: "ops@example.com", APIKey: "bad-key"},
		cloudflare.WithBaseURL(srv.URL),
	)

	aKey := NewKey[string]("aRecord")
	nsKey := NewKey[string]("nsRecord")

	b := New().
		Init(func(ctx *Context) error {
			ctx.Client = client
			return nil
		}).
		Step(NewStep(aKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			return ctx.Client.CreateRecord(context.Background(), "z1", cloudflare.Record{
				Type: "A", Name: "q.example.com", Content: "203.0.113.5", TTL: 1,
			})
		}).Silent()).
		Step(NewStep(nsKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			return ctx.Client.CreateRecord(context.Background(), "z1", cloudflare.Record{
				Type: "NS", Name: "r.example.com", Content: "q.example.com", TTL: 1,
			})
		}).Silent())

	ctx := b.execute(&cobra.Command{Use: "test"}, nil)

	if ctx.Error == nil {
		t.Fatal("expected the A record step to fail")
	}
	if got := posts.Load(); got != 1 {
		t.Errorf("server saw %d record creations, want 1 (NS must not be attempted)", got)
	}
}

// Happy path: both records created in order, with the bodies the tunnel
// needs (A fronting the server, NS delegating to the A record's name).
func TestRecordPairCreatedInOrder(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			bodies = append(bodies, body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "errors": [], "result": {"id": "372e67954025e0ba6aaa6d586b9e0b59"}}`))
	}))
	defer srv.Close()

	client := cloudflare.NewClient(
		cloudflare.Credentials{Email: "ops@example.com", APIKey: "test-key"},
		cloudflare.WithBaseURL(srv.URL),
	)

	plan := tunnel.NewPlan("example.com", 'q', 'r', "203.0.113.5")
	aKey := NewKey[string]("aRecord")
	nsKey := NewKey[string]("nsRecord")

	b := New().
		Init(func(ctx *Context) error {
			ctx.Client = client
			return nil
		}).
		Step(NewStep(aKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			return ctx.Client.CreateRecord(context.Background(), "z1", plan.A)
		}).Silent()).
		Step(NewStep(nsKey, "").Func(func(ctx *Context, _ chan<- string) (string, error) {
			return ctx.Client.CreateRecord(context.Background(), "z1", plan.NS)
		}).Silent())

	ctx := b.execute(&cobra.Command{Use: "test"}, nil)
	if ctx.Error != nil {
		t.Fatalf("pipeline failed: %v", ctx.Error)
	}

	want := []map[string]any{
		{"type": "A", "name": "q.example.com", "content": "203.0.113.5", "proxied": false, "ttl": float64(1)},
		{"type": "NS", "name": "r.example.com", "content": "q.example.com", "proxied": false, "ttl": float64(1)},
	}
	if diff := cmp.Diff(want, bodies); diff != "" {
		t.Errorf("request bodies mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedContextStore(t *testing.T) {
	key := NewKey[[]cloudflare.Zone]("zones")
	ctx := newContext(&cobra.Command{Use: "test"}, nil)

	if Has(ctx, key) {
		t.Fatal("key present before Set")
	}
	zones := []cloudflare.Zone{{ID: "z1", Name: "example.com"}}
	Set(ctx, key, zones)
	if !Has(ctx, key) {
		t.Fatal("key missing after Set")
	}
	got := Get(ctx, key)
	if len(got) != 1 || got[0].Name != "example.com" {
		t.Errorf("Get returned %v", got)
	}
}
