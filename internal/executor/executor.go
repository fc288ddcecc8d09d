package executor

import (
	"bufio"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/db"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

const (
	ansiEraseLine   = "\r\x1b[2K"
	DefaultCacheTTL = 5 * time.Minute
)

// CachedResult stores cached data with a timestamp.
type CachedResult struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// step is a single stage in the execution pipeline.
type step struct {
	message      string
	silent       bool
	run          func(ctx *Context, progress chan<- string) error
	cacheKey     string
	cacheKeyFunc func(*Context) string
}

// ContextBuilder constructs a linear executor pipeline. The first failing
// step short-circuits the run straight to Display.
type ContextBuilder struct {
	steps           []step
	displayFn       func(ctx *Context)
	invalidatesFunc func(ctx *Context) []string
	skipCache       bool
}

// New creates a new pipeline builder.
func New() *ContextBuilder {
	return &ContextBuilder{}
}

// ParserFromFlags selects the response parser once per run: rich JSON
// parsing by default, text fallback when --plain is set.
func ParserFromFlags(cmd *cobra.Command) cloudflare.ResponseParser {
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		return cloudflare.TextParser{}
	}
	return cloudflare.RichParser{}
}

// WithClient adds a step that builds the API client from stored credentials.
func (b *ContextBuilder) WithClient() *ContextBuilder {
	b.steps = append(b.steps, step{
		message: "Loading credentials",
		run: func(ctx *Context, _ chan<- string) error {
			client, err := cloudflare.ClientFromConfig(cloudflare.WithParser(ParserFromFlags(ctx.Cmd)))
			if err != nil {
				return err
			}
			ctx.Client = client
			return nil
		},
		silent: true,
	})
	return b
}

// WithNoCache adds a step that reads the --no-cache flag.
func (b *ContextBuilder) WithNoCache() *ContextBuilder {
	b.steps = append(b.steps, step{
		run: func(ctx *Context, _ chan<- string) error {
			if noCache, _ := ctx.Cmd.Flags().GetBool("no-cache"); noCache {
				b.skipCache = true
			}
			return nil
		},
		silent: true,
	})
	return b
}

// Init adds a silent untyped step, typically one that prompts the operator
// or prepares the context. Silent steps run without a spinner so interactive
// forms own the terminal.
func (b *ContextBuilder) Init(fn func(*Context) error) *ContextBuilder {
	b.steps = append(b.steps, step{
		run: func(ctx *Context, _ chan<- string) error {
			return fn(ctx)
		},
		silent: true,
	})
	return b
}

// Step adds a typed step to the pipeline.
func (b *ContextBuilder) Step(s StepRunner) *ContextBuilder {
	b.steps = append(b.steps, step{
		message:      s.getMessage(),
		silent:       s.isSilent(),
		run:          s.run,
		cacheKey:     s.getCacheKey(),
		cacheKeyFunc: s.getCacheKeyFunc(),
	})
	return b
}

// Display sets the function to display results.
func (b *ContextBuilder) Display(fn func(ctx *Context)) *ContextBuilder {
	b.displayFn = fn
	return b
}

// Invalidates sets the cache invalidation function. The returned tags are
// cleared whenever the run ends, success or failure, so staged intermediate
// results never outlive the run.
func (b *ContextBuilder) Invalidates(fn func(ctx *Context) []string) *ContextBuilder {
	b.invalidatesFunc = fn
	return b
}

// Run returns a cobra run function. Cache invalidation happens after the
// pipeline finishes and before the result is displayed, on success and
// failure alike, so staged intermediate results never outlive the run. A
// failed pipeline exits non-zero.
func (b *ContextBuilder) Run() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx := b.execute(cmd, args)
		if b.invalidatesFunc != nil {
			tags := b.invalidatesFunc(ctx)
			if len(tags) > 0 {
				_ = db.InvalidateTags(tags)
			}
		}
		b.displayFn(ctx)
		if ctx.Error != nil {
			os.Exit(1)
		}
	}
}

func (b *ContextBuilder) execute(cmd *cobra.Command, args []string) *Context {
	ctx := newContext(cmd, args)
	writer := bufio.NewWriter(os.Stdout)
	fmt.Fprintln(writer)

	start := time.Now()

	for i, s := range b.steps {
		if b.hasCacheKey(s) && b.invalidatesFunc == nil && !b.skipCache {
			cacheKey := b.buildCacheKey(ctx, s)
			if b.tryRestoreFromCache(ctx, cacheKey) {
				ctx.Duration = time.Since(start)
				return ctx
			}
		}

		if s.message != "" && !s.silent {
			err := runStep(writer, s.message, func(progress chan<- string) error {
				return s.run(ctx, progress)
			})
			fmt.Fprint(writer, ansiEraseLine)
			_ = writer.Flush()
			if err != nil {
				ctx.Error = err
				ctx.Duration = time.Since(start)
				return ctx
			}
		} else {
			if err := s.run(ctx, nil); err != nil {
				ctx.Error = err
				ctx.Duration = time.Since(start)
				return ctx
			}
		}

		if b.hasCacheKey(s) && ctx.Error == nil && b.invalidatesFunc == nil {
			cacheKey := b.buildCacheKey(ctx, s)
			b.storeToCache(ctx, cacheKey, b.steps[i:])
		}
	}

	ctx.Duration = time.Since(start)
	fmt.Fprint(writer, ansiEraseLine)
	_ = writer.Flush()

	return ctx
}

func (b *ContextBuilder) hasCacheKey(s step) bool {
	return s.cacheKey != "" || s.cacheKeyFunc != nil
}

func (b *ContextBuilder) buildCacheKey(ctx *Context, s step) string {
	baseKey := s.cacheKey
	if s.cacheKeyFunc != nil {
		baseKey = s.cacheKeyFunc(ctx)
	}

	h := sha256.New()
	h.Write([]byte(baseKey))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (b *ContextBuilder) tryRestoreFromCache(ctx *Context, cacheKey string) bool {
	cachedBytes, _ := db.Get(db.CacheBucket, []byte(cacheKey))
	if cachedBytes == nil {
		return false
	}

	var cachedResult CachedResult
	if err := json.Unmarshal(cachedBytes, &cachedResult); err != nil {
		return false
	}

	if time.Since(cachedResult.Timestamp) > DefaultCacheTTL {
		return false
	}

	// Store raw JSON; Get[T] lazily unmarshals to the right type.
	var dataMap map[string]json.RawMessage
	if err := json.Unmarshal(cachedResult.Data, &dataMap); err != nil {
		return false
	}

	for k, v := range dataMap {
		ctx.data[k] = v
	}

	return true
}

func (b *ContextBuilder) storeToCache(ctx *Context, cacheKey string, steps []step) {
	dataToCache, err := json.Marshal(ctx.data)
	if err != nil {
		return
	}

	resultToStore := CachedResult{
		Timestamp: time.Now(),
		Data:      dataToCache,
	}

	bytesToStore, err := json.Marshal(resultToStore)
	if err != nil {
		return
	}

	_ = db.Set(db.CacheBucket, []byte(cacheKey), bytesToStore)

	for _, s := range steps {
		if s.cacheKey != "" {
			_ = db.AddTagsToKey(cacheKey, []string{s.cacheKey})
		}
	}
}

func runStep(writer *bufio.Writer, message string, task func(progress chan<- string) error) error {
	s := ui.StyledSpinner()
	resultChan := make(chan error, 1)
	progressChan := make(chan string)
	currentMessage := message

	go func() {
		err := task(progressChan)
		close(progressChan)
		resultChan <- err
	}()

	for {
		select {
		case err := <-resultChan:
			return err
		case msg, ok := <-progressChan:
			if ok {
				fmt.Fprint(writer, ansiEraseLine)
				currentMessage = msg
			}
		default:
			var cmd tea.Cmd
			s, cmd = s.Update(spinner.Tick())
			if cmd != nil {
				_ = cmd()
			}
			fmt.Fprintf(writer, "\r%s %s...", s.View(), currentMessage)
			_ = writer.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}
}
