package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error
}

// Relay polls the outbox for pending rows and hands them to the dispatcher.
// Publication is strictly post-commit: rows only exist once the business
// transaction that wrote them committed.
type Relay struct {
	log       *slog.Logger
	store     Store
	dispatch  *Dispatcher
	relayID   string
	batchSize int
	interval  time.Duration
	lease     time.Duration
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string) *Relay {
	return &Relay{
		log:       log,
		store:     store,
		dispatch:  dispatch,
		relayID:   relayID,
		batchSize: 100,
		interval:  500 * time.Millisecond,
		lease:     5 * time.Second,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
			if err != nil {
				r.log.Error("relay lock batch error", "err", err)
				continue
			}
			if len(events) == 0 {
				continue
			}

			start := time.Now()
			sent := make([]int64, 0, len(events))
			for i, e := range events {
				// a slow broker must not let the lease lapse mid-batch, or a
				// second relay would pick up rows we are still publishing
				if time.Since(start) > r.lease/2 {
					remaining := make([]int64, 0, len(events)-i)
					for _, rest := range events[i:] {
						remaining = append(remaining, rest.ID)
					}
					if err := r.store.ExtendLease(ctx, r.relayID, remaining, r.lease); err != nil {
						r.log.Error("relay extend lease error", "err", err)
					}
					start = time.Now()
				}

				if err := r.dispatch.Dispatch(ctx, e); err != nil {
					if errors.Is(err, ErrPermanent) {
						_ = r.store.MarkFailed(ctx, e.ID, err.Error())
					}
					// transient failures keep the row leased; it returns to
					// pending when the lease expires
					continue
				}
				sent = append(sent, e.ID)
			}
			if len(sent) > 0 {
				if err := r.store.MarkSent(ctx, sent); err != nil {
					r.log.Error("relay mark sent error", "err", err)
				}
			}
		}
	}
}
