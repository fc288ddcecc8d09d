package executor

// StepRunner is the interface that typed steps implement.
type StepRunner interface {
	run(ctx *Context, progress chan<- string) error
	getMessage() string
	isSilent() bool
	getCacheKey() string
	getCacheKeyFunc() func(*Context) string
}

// Step is a typed step builder.
type Step[T any] struct {
	key          Key[T]
	message      string
	fn           func(*Context, chan<- string) (T, error)
	silent       bool
	cacheKey     string
	cacheKeyFunc func(*Context) string
}

// NewStep creates a new typed step with a key and message.
func NewStep[T any](key Key[T], message string) *Step[T] {
	return &Step[T]{key: key, message: message}
}

// Func sets the function to run for this step.
func (s *Step[T]) Func(fn func(*Context, chan<- string) (T, error)) *Step[T] {
	s.fn = fn
	return s
}

// Silent marks this step to run without a spinner.
func (s *Step[T]) Silent() *Step[T] {
	s.silent = true
	return s
}

// Cache gives the step a static cache key; its result is staged in the local
// db and restorable until the key's tags are invalidated.
func (s *Step[T]) Cache(key string) *Step[T] {
	s.cacheKey = key
	return s
}

// CacheFunc derives the cache key from the context at run time.
func (s *Step[T]) CacheFunc(fn func(*Context) string) *Step[T] {
	s.cacheKeyFunc = fn
	return s
}

func (s *Step[T]) run(ctx *Context, progress chan<- string) error {
	result, err := s.fn(ctx, progress)
	if err != nil {
		return err
	}
	Set(ctx, s.key, result)
	return nil
}

func (s *Step[T]) getMessage() string {
	return s.message
}

func (s *Step[T]) isSilent() bool {
	return s.silent
}

func (s *Step[T]) getCacheKey() string {
	return s.cacheKey
}

func (s *Step[T]) getCacheKeyFunc() func(*Context) string {
	return s.cacheKeyFunc
}
