package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arenaops/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *MemoryStore, id string) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &models.Tournament{
		ID:        id,
		Name:      "cup",
		Status:    models.StatusDraft,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
}

func TestMemoryStoreCreateConflict(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "t1")
	err := s.Create(context.Background(), &models.Tournament{ID: "t1"})
	assert.ErrorIs(t, err, ErrTournamentConflict)
}

func TestMemoryStoreUpdateRollsBackOnError(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "t1")

	boom := errors.New("boom")
	_, err := s.Update(context.Background(), "t1", func(tn *models.Tournament) error {
		tn.Name = "mutated"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "cup", stored.Name)
}

func TestMemoryStoreSnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "t1")

	snapshot, err := s.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	snapshot.Name = "scribbled on"

	stored, err := s.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "cup", stored.Name)
}

func TestMemoryStoreUpdateSerializesWriters(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "t1")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(context.Background(), "t1", func(tn *models.Tournament) error {
				tn.Slots.Registered = append(tn.Slots.Registered, "p")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := s.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, stored.Slots.Registered, writers)
}

func TestMemoryStoreListPagination(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(context.Background(), &models.Tournament{
			ID:        id,
			Status:    models.StatusDraft,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, err := s.List(context.Background(), nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.Equal(t, "c", page[1].ID)

	empty, err := s.List(context.Background(), nil, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreListArchivedBefore(t *testing.T) {
	s := NewMemoryStore()
	cutoff := time.Now()
	require.NoError(t, s.Create(context.Background(), &models.Tournament{
		ID: "old", Status: models.StatusArchived, UpdatedAt: cutoff.Add(-time.Hour),
	}))
	require.NoError(t, s.Create(context.Background(), &models.Tournament{
		ID: "new", Status: models.StatusArchived, UpdatedAt: cutoff.Add(time.Hour),
	}))

	expired, err := s.ListArchivedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)
}
