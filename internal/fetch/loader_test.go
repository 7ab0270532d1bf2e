package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counter records calls per key.
type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *counter) hit(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[key]++
}

func (c *counter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func echo(c *counter) Func[string] {
	return func(_ context.Context, key string) (string, error) {
		c.hit(key)
		return "value-" + key, nil
	}
}

// run executes cmd synchronously like the runtime would.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestLoadOnce(t *testing.T) {
	c := &counter{}
	l := New(echo(c))
	assert.Equal(t, Idle, l.State())

	cmd := l.Ensure("7")
	assert.Equal(t, Loading, l.State())
	assert.Nil(t, l.Ensure("7"), "same key while loading must not refetch")

	require.True(t, l.Handle(run(t, cmd)))
	assert.Equal(t, Loaded, l.State())
	assert.Equal(t, "value-7", l.Value())
	assert.Nil(t, l.Ensure("7"), "same key when loaded must not refetch")
	assert.Equal(t, 1, c.get("7"))
}

func TestStaleResultNeverOverwrites(t *testing.T) {
	release := make(chan struct{})
	fn := func(_ context.Context, key string) (string, error) {
		if key == "old" {
			// Ignores cancellation and answers late.
			<-release
		}
		return "value-" + key, nil
	}
	l := New[string](fn)

	oldCmd := l.Load("old")
	oldDone := make(chan tea.Msg, 1)
	go func() { oldDone <- oldCmd() }()

	newMsg := run(t, l.Load("new"))
	require.True(t, l.Handle(newMsg))
	assert.Equal(t, "value-new", l.Value())

	close(release)
	oldMsg := <-oldDone
	assert.True(t, l.Handle(oldMsg), "stale result still belongs to the loader")
	assert.Equal(t, Loaded, l.State())
	assert.Equal(t, "value-new", l.Value())
	assert.Equal(t, "new", l.Key())
}

func TestCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	fn := func(ctx context.Context, _ string) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}
	l := New[int](fn)

	cmd := l.Load("1")
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-started

	l.Close()
	select {
	case msg := <-done:
		res := msg.(Result)
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.True(t, l.Handle(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
	assert.Equal(t, Idle, l.State())
	assert.NoError(t, l.Err(), "cancellation is not an error")
}

func TestReloadCancelsPrevious(t *testing.T) {
	var mu sync.Mutex
	cancelled := map[string]bool{}
	fn := func(ctx context.Context, key string) (string, error) {
		if key == "a" {
			<-ctx.Done()
			mu.Lock()
			cancelled[key] = true
			mu.Unlock()
			return "", ctx.Err()
		}
		return key, nil
	}
	l := New[string](fn)

	aCmd := l.Load("a")
	aDone := make(chan tea.Msg, 1)
	go func() { aDone <- aCmd() }()

	require.True(t, l.Handle(run(t, l.Load("b"))))
	require.True(t, l.Handle(<-aDone))

	mu.Lock()
	assert.True(t, cancelled["a"])
	mu.Unlock()
	assert.Equal(t, Loaded, l.State())
	assert.Equal(t, "b", l.Value())
}

func TestErrorAndRetry(t *testing.T) {
	fail := true
	fn := func(_ context.Context, key string) (string, error) {
		if fail {
			return "", errors.New("HTTP 500")
		}
		return "ok-" + key, nil
	}
	l := New[string](fn)

	require.True(t, l.Handle(run(t, l.Load("3"))))
	assert.Equal(t, Error, l.State())
	assert.EqualError(t, l.Err(), "HTTP 500")
	assert.Empty(t, l.Value())

	fail = false
	cmd := l.Retry()
	assert.Equal(t, Loading, l.State())
	assert.NoError(t, l.Err())
	require.True(t, l.Handle(run(t, cmd)))
	assert.Equal(t, "ok-3", l.Value())
}

func TestForeignResultsIgnored(t *testing.T) {
	c := &counter{}
	a := New(echo(c))
	b := New(echo(c))

	msg := run(t, a.Load("1"))
	b.Load("1")
	assert.False(t, b.Handle(msg))
	assert.Equal(t, Loading, b.State())
	assert.False(t, a.Handle("not a result"))
	assert.True(t, a.Handle(msg))
	b.Close()
}

func TestTimeout(t *testing.T) {
	fn := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	l := New[string](fn, WithTimeout(10*time.Millisecond))
	require.True(t, l.Handle(run(t, l.Load("x"))))
	assert.Equal(t, Error, l.State())
	assert.ErrorIs(t, l.Err(), context.DeadlineExceeded)
}

func TestParentCancellationIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	l := New[string](fn, WithParent(ctx))
	cmd := l.Load("x")
	cancel()
	require.True(t, l.Handle(run(t, cmd)))
	assert.Equal(t, Idle, l.State())
	assert.NoError(t, l.Err())
}
