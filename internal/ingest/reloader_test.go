package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zone-api/internal/store"
	"zone-api/internal/zone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu  sync.Mutex
	raw []byte
	err error
}

func (f *fakeRepo) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, f.err
}

func (f *fakeRepo) Save(ctx context.Context, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
	return nil
}

func (f *fakeRepo) set(raw string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw, f.err = []byte(raw), err
}

func TestReloadOnceSwaps(t *testing.T) {
	e := zone.NewEngine(nil, nil, 0)
	repo := &fakeRepo{}
	repo.set(`[{"id":"a","name":"A"},{"id":"b","name":"B"}]`, nil)

	require.NoError(t, ReloadOnce(context.Background(), repo, e))
	assert.Equal(t, 2, e.Snapshot().Len())
}

func TestReloadOnceKeepsSnapshotOnFailure(t *testing.T) {
	e := zone.NewEngine(nil, nil, 0)
	repo := &fakeRepo{}
	repo.set(`[{"id":"a","name":"A"}]`, nil)
	require.NoError(t, ReloadOnce(context.Background(), repo, e))
	before := e.Snapshot()

	repo.set(`{"broken"`, nil)
	err := ReloadOnce(context.Background(), repo, e)
	assert.ErrorIs(t, err, zone.ErrInvalidJSON)
	assert.Same(t, before, e.Snapshot())

	repo.set(`{"unknown": true}`, nil)
	assert.ErrorIs(t, ReloadOnce(context.Background(), repo, e), zone.ErrUnsupportedShape)

	repo.set(``, errors.New("disk gone"))
	assert.ErrorContains(t, ReloadOnce(context.Background(), repo, e), "disk gone")
	assert.Same(t, before, e.Snapshot())
}

func TestReloadOnceEmptyRepository(t *testing.T) {
	e := zone.NewEngine(nil, nil, 0)
	repo := &fakeRepo{}
	repo.set(``, store.ErrNoDataset)
	assert.NoError(t, ReloadOnce(context.Background(), repo, e))
	assert.Equal(t, 0, e.Snapshot().Len())
}

func TestStartReloaderPicksUpChanges(t *testing.T) {
	e := zone.NewEngine(nil, nil, 0)
	repo := &fakeRepo{}
	repo.set(`[{"id":"a","name":"A"}]`, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartReloader(ctx, repo, e, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return e.Snapshot().Len() == 1 }, time.Second, 5*time.Millisecond)
	repo.set(`[{"id":"a","name":"A"},{"id":"b","name":"B"},{"id":"c","name":"C"}]`, nil)
	assert.Eventually(t, func() bool { return e.Snapshot().Len() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop")
	}
}

func TestStartReloaderDisabled(t *testing.T) {
	done := StartReloader(context.Background(), &fakeRepo{}, zone.NewEngine(nil, nil, 0), 0)
	_, open := <-done
	assert.False(t, open)
}
