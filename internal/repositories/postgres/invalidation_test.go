package postgres

import (
	"context"
	"testing"
)

func TestDeferredInvalidationsRunInOrderAndDrain(t *testing.T) {
	q := &deferredInvalidations{}
	var got []int
	q.add(func(context.Context) { got = append(got, 1) })
	q.add(func(context.Context) { got = append(got, 2) })

	q.run(context.Background())
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("unexpected run order %v", got)
	}

	// The queue drains on run, a second run evicts nothing
	q.run(context.Background())
	if len(got) != 2 {
		t.Errorf("queue ran twice, got %v", got)
	}
}

func TestInvalidateDefersInsideTransaction(t *testing.T) {
	q := &deferredInvalidations{}
	repo := &TutorPostgreSQL{deferred: q}

	ran := false
	repo.invalidate(context.Background(), func(context.Context) { ran = true })
	if ran {
		t.Error("eviction must not run while the transaction is open")
	}

	q.run(context.Background())
	if !ran {
		t.Error("eviction must run once the queue drains after commit")
	}
}

func TestInvalidateRunsImmediatelyWithoutTransaction(t *testing.T) {
	repo := &ApplicationPostgreSQL{}

	ran := false
	repo.invalidate(context.Background(), func(context.Context) { ran = true })
	if !ran {
		t.Error("expected an immediate eviction outside a transaction")
	}
}
