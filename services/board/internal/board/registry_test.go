package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"shenanigigs/common/session"
	"shenanigigs/services/board/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Set(context.Context, string, interface{}, time.Duration) error { return errStoreDown }
func (failingStore) Get(context.Context, string, interface{}) error                { return errStoreDown }
func (failingStore) Delete(context.Context, string) error                          { return errStoreDown }
func (failingStore) Close() error                                                  { return nil }

func newTestRegistry(t *testing.T, src *stubSource, store session.Store) *Registry {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore(session.DefaultOptions())
	}
	r := NewRegistry(src, store, zaptest.NewLogger(t), RegistryOptions{
		IdleTimeout:   time.Minute,
		SelectionTTL:  time.Hour,
		ReloadWorkers: 2,
	})
	t.Cleanup(r.Close)
	return r
}

func TestRegistryAcquireCreatesAndLoadsOnce(t *testing.T) {
	src := &stubSource{postings: scenarioPostings()}
	r := newTestRegistry(t, src, nil)
	ctx := context.Background()

	b1, err := r.Acquire(ctx, "s1")
	require.NoError(t, err)
	b1.Wait()

	b2, err := r.Acquire(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, b1, b2)
	assert.Equal(t, 1, src.callCount())
	assert.Len(t, b1.Snapshot().Rows, 4)

	other, err := r.Acquire(ctx, "s2")
	require.NoError(t, err)
	other.Wait()
	assert.NotSame(t, b1, other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistrySelectPersistsAndRestores(t *testing.T) {
	src := &stubSource{postings: scenarioPostings()}
	store := session.NewMemoryStore(session.DefaultOptions())
	r := newTestRegistry(t, src, store)
	ctx := context.Background()

	b, err := r.Select(ctx, "viewer", "Eng")
	require.NoError(t, err)
	b.Wait()
	assert.Len(t, b.Snapshot().Rows, 2)

	var stored string
	require.NoError(t, store.Get(ctx, selectionKey("viewer"), &stored))
	assert.Equal(t, "Eng", stored)

	// The board is swept, then the same viewer comes back.
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.False(t, b.Live())

	restored, err := r.Acquire(ctx, "viewer")
	require.NoError(t, err)
	restored.Wait()
	snap := restored.Snapshot()
	assert.Equal(t, "Eng", snap.SelectedDepartment)
	assert.Len(t, snap.Rows, 2)
}

func TestRegistrySelectToleratesStoreFailure(t *testing.T) {
	r := newTestRegistry(t, &stubSource{postings: scenarioPostings()}, failingStore{})
	ctx := context.Background()

	b, err := r.Select(ctx, "viewer", "Sales")
	require.NoError(t, err)
	b.Wait()
	assert.Equal(t, "Sales", b.Snapshot().SelectedDepartment)
	assert.Len(t, b.Snapshot().Rows, 1)
}

func TestRegistryReloadAll(t *testing.T) {
	src := &stubSource{postings: scenarioPostings()[:1]}
	r := newTestRegistry(t, src, nil)
	ctx := context.Background()

	var boards []*Board
	for _, id := range []string{"a", "b", "c"} {
		b, err := r.Acquire(ctx, id)
		require.NoError(t, err)
		b.Wait()
		boards = append(boards, b)
	}

	src.set(scenarioPostings(), nil)
	assert.Equal(t, 3, r.ReloadAll(ctx))
	assert.Equal(t, 6, src.callCount())
	for _, b := range boards {
		assert.Len(t, b.Snapshot().Rows, 4)
	}
}

func TestRegistryReloadAllEmpty(t *testing.T) {
	r := newTestRegistry(t, &stubSource{}, nil)
	assert.Equal(t, 0, r.ReloadAll(context.Background()))
}

func TestRegistrySweepKeepsActiveBoards(t *testing.T) {
	r := newTestRegistry(t, &stubSource{postings: []models.Posting{}}, nil)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	old, err := r.Acquire(ctx, "old")
	require.NoError(t, err)
	old.Wait()

	now = now.Add(45 * time.Second)
	fresh, err := r.Acquire(ctx, "fresh")
	require.NoError(t, err)
	fresh.Wait()

	assert.Equal(t, 1, r.Sweep(now.Add(30*time.Second)))
	assert.False(t, old.Live())
	assert.True(t, fresh.Live())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryClose(t *testing.T) {
	r := newTestRegistry(t, &stubSource{}, nil)
	ctx := context.Background()

	b, err := r.Acquire(ctx, "s")
	require.NoError(t, err)
	b.Wait()

	r.Close()
	assert.False(t, b.Live())
	assert.Equal(t, 0, r.Len())

	_, err = r.Acquire(ctx, "s")
	assert.ErrorIs(t, err, ErrRegistryClosed)
	_, err = r.Select(ctx, "s", "Eng")
	assert.ErrorIs(t, err, ErrRegistryClosed)
}

func TestRegistryJanitorStopsWithContext(t *testing.T) {
	r := newTestRegistry(t, &stubSource{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRegistryMaxBoards(t *testing.T) {
	src := &stubSource{postings: scenarioPostings()}
	r := NewRegistry(src, session.NewMemoryStore(session.DefaultOptions()), zaptest.NewLogger(t), RegistryOptions{
		IdleTimeout:   time.Minute,
		ReloadWorkers: 1,
		MaxBoards:     2,
	})
	t.Cleanup(r.Close)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		b, err := r.Acquire(ctx, id)
		require.NoError(t, err)
		b.Wait()
	}

	_, err := r.Acquire(ctx, "s3")
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, src.callCount())

	existing, err := r.Acquire(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, existing)

	r.Sweep(time.Now().Add(time.Hour))
	_, err = r.Acquire(ctx, "s3")
	assert.NoError(t, err)
}
