package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService blocks in Start until Stop and records the order of stops.
type blockingService struct {
	name    string
	started atomic.Bool
	done    chan struct{}
	once    sync.Once
	order   *[]string
	mu      *sync.Mutex
}

func newBlocking(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{name: name, done: make(chan struct{}), order: order, mu: mu}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	<-b.done
	return nil
}

func (b *blockingService) Stop() {
	b.once.Do(func() {
		b.mu.Lock()
		*b.order = append(*b.order, b.name)
		b.mu.Unlock()
		close(b.done)
	})
}

func TestLifecycle_StopsInReverseOrderThenRunsClosers(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	lc := NewLifecycle(zaptest.NewLogger(t))
	first := newBlocking("first", &order, &mu)
	second := newBlocking("second", &order, &mu)
	lc.Add("first", first)
	lc.Add("second", second)
	lc.OnShutdown("pool", func() error {
		mu.Lock()
		order = append(order, "pool")
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return first.started.Load() && second.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second", "first", "pool"}, order)
}

func TestLifecycle_ServiceFailureStopsOthers(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := newBlocking("healthy", &order, &mu)
	boom := errors.New("address in use")
	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{
		StartFn: func() error { return boom },
		StopFn:  func() {},
	})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"healthy"}, order)
}

func TestLifecycle_CloserErrorsAreReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	closeErr := errors.New("flush failed")
	lc.OnShutdown("roster", func() error { return closeErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := lc.Run(ctx)
	assert.ErrorIs(t, err, closeErr)
}

func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)
}
