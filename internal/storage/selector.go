// Package storage selects the persistence backend at startup.
//
// The selection runs exactly once per process: the adapter is probed with a
// single lightweight read racing a bounded timeout, and the process binds to
// the adapter on success or to the in-memory entity store on failure. There
// is no re-probe, no failback when the database becomes reachable later, and
// no fail-over when the adapter starts erroring after a successful probe.
// The chosen store is returned to the caller and injected into the handlers;
// no global handle is mutated.
package storage

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

// Backend identifies which implementation was bound.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// DefaultProbeTimeout bounds the startup probe.
const DefaultProbeTimeout = 8 * time.Second

// Connect builds the primary store. It is invoked under the probe deadline
// and should perform any setup the probe read depends on (connect, migrate).
type Connect func(ctx context.Context) (pharmacy.Store, error)

// Select probes the primary backend and returns the store the process will
// use for its whole lifetime. connect and the probe read share a single
// deadline; any error or timeout binds the fallback.
func Select(ctx context.Context, timeout time.Duration, connect Connect, fallback pharmacy.Store, logger *zap.Logger) (pharmacy.Store, Backend) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		store pharmacy.Store
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		store, err := connect(probeCtx)
		if err == nil {
			_, err = store.ListMedicines(probeCtx)
		}
		done <- outcome{store: store, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			logger.Info("storage bound to database backend")
			return out.store, BackendPostgres
		}
		closeStore(out.store)
		logger.Warn("database probe failed, using in-memory storage", zap.Error(out.err))
	case <-probeCtx.Done():
		// The probe goroutine may still be connecting; release whatever it
		// eventually produces since the process has already bound elsewhere.
		go func() {
			closeStore((<-done).store)
		}()
		logger.Warn("database probe timed out, using in-memory storage",
			zap.Duration("timeout", timeout))
	}
	return fallback, BackendMemory
}

func closeStore(s pharmacy.Store) {
	if c, ok := s.(io.Closer); ok && c != nil {
		c.Close()
	}
}
