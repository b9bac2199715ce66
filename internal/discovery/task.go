package discovery

import (
	"context"

	"github.com/google/uuid"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
)

// TriggerRequest scopes an immediate pass to one company and optionally one
// store domain.
type TriggerRequest struct {
	CompanyID  uuid.UUID
	ShopDomain string
}

// Task is the handle of a triggered pass. Callers may discard it.
type Task struct {
	ID      uuid.UUID
	Request TriggerRequest

	done  chan struct{}
	stats CycleStats
	err   error
}

func newTask(req TriggerRequest) *Task {
	return &Task{ID: uuid.New(), Request: req, done: make(chan struct{})}
}

func (t *Task) finish(stats CycleStats, err error) {
	t.stats = stats
	t.err = err
	close(t.done)
}

// Done is closed when the pass has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the pass finishes or ctx is done. The error is the
// pass's own failure, or ctx.Err() if waiting was abandoned.
func (t *Task) Wait(ctx context.Context) (CycleStats, error) {
	ctx = ctxutil.Default(ctx)
	select {
	case <-t.done:
		return t.stats, t.err
	case <-ctx.Done():
		return CycleStats{}, ctx.Err()
	}
}
