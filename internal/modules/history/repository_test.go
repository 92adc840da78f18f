package history

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/aristath/paddock/internal/testing"
)

func newTestRepo(t *testing.T) (*Repository, func()) {
	db, cleanup := testhelpers.NewTestDB(t, "history")
	return NewRepository(db.Conn(), zerolog.Nop()), cleanup
}

func TestRecordAssignsSequentialNumbers(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	seq1, err := repo.Record("a", "Alice")
	require.NoError(t, err)
	seq2, err := repo.Record("b", "Bob")
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)

	entries, err := repo.All()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ParticipantID)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.Equal(t, "b", entries[1].ParticipantID)
}

func TestRollingWindowEvictsOldest(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	for i := 0; i < WindowSize+1; i++ {
		_, err := repo.Record(fmt.Sprintf("p%d", i), fmt.Sprintf("Name %d", i))
		require.NoError(t, err)
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(WindowSize), count)

	entries, err := repo.All()
	require.NoError(t, err)
	require.Len(t, entries, WindowSize)

	// Entry #1 was evicted; the window now starts at seq 2 and sequence
	// numbers did not shift for the survivors.
	assert.Equal(t, int64(2), entries[0].Seq)
	assert.Equal(t, "p1", entries[0].ParticipantID)
	assert.Equal(t, int64(WindowSize+1), entries[len(entries)-1].Seq)
}

func TestSequenceSurvivesClear(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	_, err := repo.Record("a", "Alice")
	require.NoError(t, err)
	_, err = repo.Record("b", "Bob")
	require.NoError(t, err)

	removed, err := repo.Clear()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// AUTOINCREMENT keeps counting past cleared entries.
	seq, err := repo.Record("c", "Cara")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestLastWinnerID(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	id, err := repo.LastWinnerID()
	require.NoError(t, err)
	assert.Equal(t, "", id)

	_, err = repo.Record("a", "Alice")
	require.NoError(t, err)
	_, err = repo.Record("b", "Bob")
	require.NoError(t, err)

	id, err = repo.LastWinnerID()
	require.NoError(t, err)
	assert.Equal(t, "b", id)
}
