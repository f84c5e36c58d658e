package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
	"github.com/openpharm/go-pims/internal/infrastructure/memory"
)

type probeStore struct {
	pharmacy.Store
	listErr error
	closed  bool
}

func (p *probeStore) ListMedicines(ctx context.Context) ([]pharmacy.Medicine, error) {
	return nil, p.listErr
}

func (p *probeStore) Close() error {
	p.closed = true
	return nil
}

func TestSelectBindsPrimaryOnSuccess(t *testing.T) {
	primary := &probeStore{}
	fallback := memory.NewStore(nil)

	connect := func(ctx context.Context) (pharmacy.Store, error) {
		return primary, nil
	}

	store, backend := Select(context.Background(), time.Second, connect, fallback, nil)

	assert.Equal(t, BackendPostgres, backend)
	assert.Same(t, pharmacy.Store(primary), store)
	assert.False(t, primary.closed)
}

func TestSelectFallsBackOnConnectError(t *testing.T) {
	fallback := memory.NewStore(nil)

	connect := func(ctx context.Context) (pharmacy.Store, error) {
		return nil, errors.New("connection refused")
	}

	store, backend := Select(context.Background(), time.Second, connect, fallback, nil)

	assert.Equal(t, BackendMemory, backend)
	assert.Same(t, pharmacy.Store(fallback), store)
}

func TestSelectFallsBackOnProbeReadError(t *testing.T) {
	primary := &probeStore{listErr: errors.New("relation does not exist")}
	fallback := memory.NewStore(nil)

	connect := func(ctx context.Context) (pharmacy.Store, error) {
		return primary, nil
	}

	store, backend := Select(context.Background(), time.Second, connect, fallback, nil)

	assert.Equal(t, BackendMemory, backend)
	assert.Same(t, pharmacy.Store(fallback), store)
	assert.True(t, primary.closed)
}

func TestSelectFallsBackOnTimeout(t *testing.T) {
	fallback := memory.NewStore(nil)
	released := make(chan struct{})

	connect := func(ctx context.Context) (pharmacy.Store, error) {
		<-ctx.Done()
		close(released)
		return nil, ctx.Err()
	}

	start := time.Now()
	store, backend := Select(context.Background(), 50*time.Millisecond, connect, fallback, nil)

	assert.Equal(t, BackendMemory, backend)
	assert.Same(t, pharmacy.Store(fallback), store)
	assert.Less(t, time.Since(start), 5*time.Second)

	// The straggling probe is released, not left hanging.
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("probe goroutine never unblocked")
	}
}

func TestSelectDefaultsTimeout(t *testing.T) {
	fallback := memory.NewStore(nil)

	connect := func(ctx context.Context) (pharmacy.Store, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.InDelta(t, DefaultProbeTimeout.Seconds(), time.Until(deadline).Seconds(), 1)
		return nil, errors.New("stop here")
	}

	_, backend := Select(context.Background(), 0, connect, fallback, nil)
	assert.Equal(t, BackendMemory, backend)
}
