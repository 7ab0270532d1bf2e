// Package fetch runs cancellable, parameterized content requests for
// screens.
//
// A Loader is owned by one screen and used only from the Bubble Tea update
// loop. Each Load cancels the previous request and bumps a generation
// counter; results come back as a Result message stamped with the loader's
// owner token, generation and key, and Handle drops anything stale. A screen
// being closed cancels whatever is in flight.
package fetch

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// State is the visible state of a loader. Loading, Error and Loaded are
// mutually exclusive.
type State int

const (
	Idle State = iota
	Loading
	Error
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Loaded:
		return "loaded"
	}
	return "idle"
}

// Func fetches the value for key.
type Func[T any] func(ctx context.Context, key string) (T, error)

// Result is the message a load produces.
type Result struct {
	Owner uint64
	Gen   uint64
	Key   string
	Value any
	Err   error
}

var owners = atomic.NewUint64(0)

// Option configures a Loader.
type Option func(*options)

type options struct {
	timeout time.Duration
	parent  context.Context
	logger  *zap.Logger
	name    string
}

// WithTimeout bounds every request. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithParent derives request contexts from ctx.
func WithParent(ctx context.Context) Option {
	return func(o *options) { o.parent = ctx }
}

// WithLogger sets the logger and a name used in its entries.
func WithLogger(l *zap.Logger, name string) Option {
	return func(o *options) {
		o.logger = l
		o.name = name
	}
}

// Loader holds the state of one keyed fetch.
type Loader[T any] struct {
	owner uint64
	fn    Func[T]
	opts  options

	state  State
	key    string
	gen    uint64
	value  T
	err    error
	cancel context.CancelFunc
}

// New creates a loader around fn.
func New[T any](fn Func[T], opts ...Option) *Loader[T] {
	o := options{parent: context.Background(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Loader[T]{owner: owners.Inc(), fn: fn, opts: o}
}

// Ensure loads key unless the loader already holds or is fetching it.
func (l *Loader[T]) Ensure(key string) tea.Cmd {
	if l.state != Idle && l.key == key {
		return nil
	}
	return l.Load(key)
}

// Load cancels any request in flight and starts a new one for key. The
// returned command must be handed to the runtime.
func (l *Loader[T]) Load(key string) tea.Cmd {
	l.stop()
	l.gen++
	l.key = key
	l.state = Loading
	l.err = nil
	var zero T
	l.value = zero

	ctx, cancel := context.WithCancel(l.opts.parent)
	if l.opts.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, l.opts.timeout)
		parentCancel := cancel
		cancel = func() {
			cancelTimeout()
			parentCancel()
		}
	}
	l.cancel = cancel

	owner, gen, fn := l.owner, l.gen, l.fn
	l.opts.logger.Debug("fetch start",
		zap.String("loader", l.opts.name),
		zap.String("key", key),
		zap.Uint64("gen", gen))
	return func() tea.Msg {
		defer cancel()
		v, err := fn(ctx, key)
		return Result{Owner: owner, Gen: gen, Key: key, Value: v, Err: err}
	}
}

// Retry reloads the current key.
func (l *Loader[T]) Retry() tea.Cmd {
	return l.Load(l.key)
}

// Close cancels the request in flight and forgets the loaded value. Results
// of cancelled requests are discarded when they arrive.
func (l *Loader[T]) Close() {
	l.stop()
	l.gen++
	l.state = Idle
	l.err = nil
	var zero T
	l.value = zero
}

// Handle applies msg if it is this loader's current result. It reports
// whether msg belonged to the loader, stale or not.
func (l *Loader[T]) Handle(msg tea.Msg) bool {
	res, ok := msg.(Result)
	if !ok || res.Owner != l.owner {
		return false
	}
	if res.Gen != l.gen || res.Key != l.key || l.state != Loading {
		l.opts.logger.Debug("fetch result dropped",
			zap.String("loader", l.opts.name),
			zap.String("key", res.Key),
			zap.Uint64("gen", res.Gen),
			zap.Uint64("current_gen", l.gen))
		return true
	}
	l.cancel = nil

	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			// Silent; the request was abandoned from outside.
			l.state = Idle
			return true
		}
		l.opts.logger.Warn("fetch failed",
			zap.String("loader", l.opts.name),
			zap.String("key", res.Key),
			zap.Error(res.Err))
		l.state = Error
		l.err = res.Err
		return true
	}

	v, ok := res.Value.(T)
	if !ok && res.Value != nil {
		l.state = Error
		l.err = errors.New("fetch: result type mismatch")
		return true
	}
	l.value = v
	l.state = Loaded
	return true
}

// State returns the current state.
func (l *Loader[T]) State() State { return l.state }

// Key returns the key of the latest load.
func (l *Loader[T]) Key() string { return l.key }

// Value returns the loaded value; it is the zero value unless State is
// Loaded.
func (l *Loader[T]) Value() T { return l.value }

// Err returns the failure when State is Error.
func (l *Loader[T]) Err() error { return l.err }

// Loading reports whether a request is in flight.
func (l *Loader[T]) Loading() bool { return l.state == Loading }

func (l *Loader[T]) stop() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
