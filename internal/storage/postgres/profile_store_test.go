package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

// postgresTestDSN returns the DSN for the test database.
// If MEMORYKEEPER_TEST_POSTGRES_DSN is not set, tests are skipped.
func postgresTestDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv("MEMORYKEEPER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MEMORYKEEPER_TEST_POSTGRES_DSN not set; skipping PostgreSQL integration tests")
	}
	return dsn
}

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	store, err := NewProfileStore(postgresTestDSN(t))
	require.NoError(t, err)
	require.NoError(t, store.TruncateForTest(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProfileStore_StrengthRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReadStrength(ctx, "user-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.SaveProfile(ctx, &types.AgentProfile{
		UserID:          "user-1",
		CurrentPersona:  types.PersonaMentor,
		MemoryStrength:  88,
		LastInteraction: time.Now(),
	}))

	strength, err := store.ReadStrength(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 88, strength)
}

func TestProfileStore_ListPerformanceLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.AppendPerformance(ctx, "user-1", types.PerformanceRecord{
			GameID:     "timeline",
			Difficulty: types.DifficultyHard,
			Moves:      i,
			Success:    true,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := store.ListPerformance(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].Moves)
	assert.Equal(t, 3, recent[1].Moves)
}
