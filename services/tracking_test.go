package services

import (
	"testing"

	"chartridge/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(n int64) *int64 { return &n }

func TestRecordIncrementSetIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	spec := EventSpec{Increment: "coins", Set: int64p(5)}
	require.NoError(t, svc.Record("flappy", "abcdef", spec))
	require.NoError(t, svc.Record("flappy", "abcdef", spec))

	rows, err := st.ListSessionIncrements("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].Value)
}

func TestRecordIncrementRelativeDelta(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Increment: "coins", By: int64p(3)}))
	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Increment: "coins", By: int64p(2), Decrease: true}))

	rows, err := st.ListSessionIncrements("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Value)
}

func TestRecordIncrementDefaultsToOne(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Increment: "deaths"}))
	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Increment: "deaths"}))
	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Increment: "deaths", Decrease: true}))

	rows, err := st.ListSessionIncrements("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Value)
}

func TestRecordCheckpointsAppendOnly(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Checkpoint: "mid"}))
	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Checkpoint: "mid"}))

	rows, err := st.ListSessionCheckpoints("flappy", "abcdef")
	require.NoError(t, err)
	assert.Len(t, rows, 2, "duplicate checkpoint reports are kept, not deduplicated")
}

func TestRecordDatumLastWriteWins(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Data: "weapon", Value: "sword", HasValue: true}))
	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Data: "weapon", Value: "bow", HasValue: true}))

	rows, err := st.ListSessionData("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bow", rows[0].Value)
}

func TestRecordPrecedenceFirstShapeWins(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	// checkpoint outranks score and increment when a client sends all three
	spec := EventSpec{
		Checkpoint: "mid",
		Mode:       "arcade",
		Score:      99,
		HasScore:   true,
		Increment:  "coins",
	}
	require.NoError(t, svc.Record("flappy", "abcdef", spec))

	cps, _ := st.ListSessionCheckpoints("flappy", "abcdef")
	scores, _ := st.ListSessionScores("flappy", "abcdef")
	incs, _ := st.ListSessionIncrements("flappy", "abcdef")
	assert.Len(t, cps, 1)
	assert.Empty(t, scores)
	assert.Empty(t, incs)
}

func TestRecordScoreRequiresMode(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("flappy", "abcdef", EventSpec{Score: 42, HasScore: true}))

	scores, _ := st.ListSessionScores("flappy", "abcdef")
	assert.Empty(t, scores)
}

func TestRecordMissingParamsIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	require.NoError(t, svc.Record("", "", EventSpec{Checkpoint: "mid"}))
	require.NoError(t, svc.Record("flappy", "", EventSpec{Checkpoint: "mid"}))
	require.NoError(t, svc.Record("", "abcdef", EventSpec{Checkpoint: "mid"}))

	rows, err := st.ListCheckpoints("flappy")
	require.NoError(t, err)
	assert.Empty(t, rows, "beacon calls without game and id must write nothing")
}

func TestRecordDoesNotRequireRegisteredSession(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTrackService(st)

	// neither game nor session exists; the event is still recorded
	require.NoError(t, svc.Record("ghost-game", "zzzzzz", EventSpec{Bonus: "secret"}))

	rows, err := st.ListSessionBonuses("ghost-game", "zzzzzz")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
