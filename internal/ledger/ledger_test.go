package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordRunRoundTrip(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	steps := []Step{
		{Seq: 0, Round: 1, Hyp: "h", Grade: grade.MinusOne, From: "Tr(-1, Bool * Bool)", To: "Bool * Bool"},
		{Seq: 1, Round: 2, Hyp: "k", Grade: grade.Infinity, From: "Tr(inf, Bool)", To: "Bool"},
		{Seq: 2, Round: 2, Hyp: "p", Grade: grade.MinusOne, From: "Tr(-1, Bool)", To: "Tr(-1, Bool)", Rejected: true, Reason: "target Bool is not known to be -1-truncated"},
	}
	id, err := l.RecordRun(ctx, Run{
		Goal:     "goal.yaml",
		Target:   "Tr(-1, Bool)",
		Status:   StatusOK,
		Stripped: 2,
		Rounds:   2,
		Duration: 1500 * time.Millisecond,
		Steps:    steps,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "run ids are UUIDs")

	got, err := l.Steps(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(steps, got); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	runs, err := l.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, StatusOK, runs[0].Status)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.Empty(t, runs[0].Steps)
}

func TestRunsNewestFirst(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, goal := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		_, err := l.RecordRun(ctx, Run{
			Goal: goal, Target: "Bool", Status: StatusNoProgress,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := l.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.yaml", runs[0].Goal)
	assert.Equal(t, "b.yaml", runs[1].Goal)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Minute)))
}

func TestRecordRunKeepsGivenID(t *testing.T) {
	l := openTemp(t)
	id, err := l.RecordRun(context.Background(), Run{ID: "fixed", Goal: "g", Target: "Unit", Status: StatusError})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = l.RecordRun(context.Background(), Run{ID: "fixed", Goal: "g", Target: "Unit", Status: StatusError})
	assert.Error(t, err, "duplicate ids are rejected")
}

func TestStepsUnknownRun(t *testing.T) {
	l := openTemp(t)
	_, err := l.Steps(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	id, err := l.RecordRun(context.Background(), Run{Goal: "g", Target: "Unit", Status: StatusOK, Stripped: 1, Rounds: 1})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, path, l.Path())
}
