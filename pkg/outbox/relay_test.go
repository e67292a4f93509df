package outbox

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  []int64
}

func (f *fakeStore) LockBatch(_ context.Context, _ string, batchSize int, _ time.Duration) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, nil
	}
	n := min(batchSize, len(f.pending))
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch, nil
}

func (f *fakeStore) MarkSent(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ids...)
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeStore) ExtendLease(_ context.Context, _ string, _ []int64, _ time.Duration) error {
	return nil
}

func (f *fakeStore) snapshot() (sent, failed []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.sent...), append([]int64(nil), f.failed...)
}

func TestRelayDispatchesPendingRows(t *testing.T) {
	store := &fakeStore{pending: []Event{
		{ID: 1, AggregateID: "b1", Type: "BookingConfirmed", Payload: []byte(`{}`)},
		{ID: 2, AggregateID: "b1", Type: "BookingCancelled", Payload: []byte(`{}`)},
		{ID: 3, AggregateID: "b2", Type: "Unroutable", Payload: []byte(`{}`)},
	}}
	producer := &fakeProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, testRoutes())
	r := NewRelay(slog.New(slog.NewTextHandler(io.Discard, nil)), store, d, "test-relay")
	r.interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	sent, failed := store.snapshot()
	assert.ElementsMatch(t, []int64{1, 2}, sent)
	assert.ElementsMatch(t, []int64{3}, failed, "unroutable rows are parked as failed")
	assert.Len(t, producer.msgs, 2)
}
