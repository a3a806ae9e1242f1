package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainoffering "campusx/internal/domain/offering"
)

func seedOffering(t *testing.T, repo *OfferingRepository) *domainoffering.Offering {
	t.Helper()
	off, err := domainoffering.New(domainoffering.CreateParams{
		ID:          "off-1",
		OwnerID:     "owner-1",
		Title:       "Chess coaching",
		Description: "Openings and endgames",
		Slots:       []string{"morning", "evening"},
		Duration:    "1h",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), off))
	return off
}

func TestAddOccurrenceSingleWinnerUnderContention(t *testing.T) {
	repo := NewOfferingRepository()
	off := seedOffering(t, repo)
	occ := domainoffering.Occurrence{Slot: "morning", Day: "2026-04-01"}

	const claimers = 32
	var wg sync.WaitGroup
	results := make(chan error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.AddOccurrence(context.Background(), off.ID, occ)
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, domainoffering.ErrOccurrenceTaken)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, claimers-1, conflicts)

	stored, err := repo.ByID(context.Background(), off.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Booked, 1)
}

func TestRemoveOccurrenceFreesPair(t *testing.T) {
	repo := NewOfferingRepository()
	off := seedOffering(t, repo)
	occ := domainoffering.Occurrence{Slot: "morning", Day: "2026-04-01"}

	require.NoError(t, repo.AddOccurrence(context.Background(), off.ID, occ))
	require.NoError(t, repo.RemoveOccurrence(context.Background(), off.ID, occ))
	require.NoError(t, repo.AddOccurrence(context.Background(), off.ID, occ))
}

func TestSavePreservesEngineOwnedFields(t *testing.T) {
	repo := NewOfferingRepository()
	off := seedOffering(t, repo)
	ctx := context.Background()
	occ := domainoffering.Occurrence{Slot: "evening", Day: "2026-04-02"}

	require.NoError(t, repo.AddOccurrence(ctx, off.ID, occ))
	require.NoError(t, repo.IncrementCompleted(ctx, off.ID))

	// An owner edit based on a stale read must not clear the booked list
	// or reset the counter.
	stale, err := repo.ByID(ctx, off.ID)
	require.NoError(t, err)
	stale.Booked = nil
	stale.CompletedCount = 0
	stale.Title = "Chess coaching, updated"
	require.NoError(t, repo.Save(ctx, stale))

	stored, err := repo.ByID(ctx, off.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess coaching, updated", stored.Title)
	assert.True(t, stored.IsBooked(occ))
	assert.Equal(t, 1, stored.CompletedCount)
}

func TestListFiltersAndSorts(t *testing.T) {
	repo := NewOfferingRepository()
	ctx := context.Background()

	mk := func(id string, tags []string, completed int) {
		off, err := domainoffering.New(domainoffering.CreateParams{
			ID:          domainoffering.ID(id),
			OwnerID:     "owner-1",
			Title:       id,
			Description: "d",
			Tags:        tags,
			Slots:       []string{"morning"},
			Duration:    "1h",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, off))
		for i := 0; i < completed; i++ {
			require.NoError(t, repo.IncrementCompleted(ctx, off.ID))
		}
	}
	mk("a", []string{"music"}, 3)
	mk("b", []string{"chess"}, 1)
	mk("c", []string{"music", "chess"}, 2)

	byTag, err := repo.List(ctx, domainoffering.Filter{Tags: []string{"music"}})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	popular, err := repo.List(ctx, domainoffering.Filter{SortBy: domainoffering.SortByCompleted})
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.EqualValues(t, "a", popular[0].ID)
	assert.EqualValues(t, "b", popular[2].ID)
}
