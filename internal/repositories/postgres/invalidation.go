package postgres

import (
	"context"
	"sync"
)

// deferredInvalidations collects cache evictions issued while a transaction
// is still open. Evicting before commit lets a concurrent reader re-fill
// the cache with pre-commit rows, and a rollback would have evicted for
// nothing, so the queue is drained only after the commit lands.
type deferredInvalidations struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (d *deferredInvalidations) add(fn func(context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fns = append(d.fns, fn)
}

func (d *deferredInvalidations) run(ctx context.Context) {
	d.mu.Lock()
	fns := d.fns
	d.fns = nil
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
