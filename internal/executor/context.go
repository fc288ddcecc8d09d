package executor

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
)

// Context holds all execution state passed through pipeline steps.
type Context struct {
	Cmd  *cobra.Command
	Args []string

	// Client is populated by WithClient or by a credential-collecting step.
	Client *cloudflare.Client

	Duration time.Duration
	Error    error

	// Typed data store for step results.
	data map[string]any
}

func newContext(cmd *cobra.Command, args []string) *Context {
	return &Context{
		Cmd:  cmd,
		Args: args,
		data: make(map[string]any),
	}
}

// Set stores a typed value in the context.
func Set[T any](ctx *Context, key Key[T], value T) {
	ctx.data[key.name] = value
}

// Get retrieves a typed value from the context. Values restored from the
// cache arrive as json.RawMessage and are unmarshalled to T on first access.
func Get[T any](ctx *Context, key Key[T]) T {
	v, ok := ctx.data[key.name]
	if !ok {
		var zero T
		return zero
	}

	if typed, ok := v.(T); ok {
		return typed
	}

	if raw, ok := v.(json.RawMessage); ok {
		var result T
		if err := json.Unmarshal(raw, &result); err == nil {
			ctx.data[key.name] = result
			return result
		}
	}

	var zero T
	return zero
}

// Has checks if a key exists in the context.
func Has[T any](ctx *Context, key Key[T]) bool {
	_, ok := ctx.data[key.name]
	return ok
}
