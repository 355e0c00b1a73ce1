package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SolanaRogue/internal/ledger"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func result(session, wallet string, score uint64, outcome ledger.Outcome) ledger.CommitResult {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return ledger.CommitResult{
		SessionID:  session,
		Wallet:     wallet,
		Score:      score,
		Outcome:    outcome,
		Signature:  "sig-" + session,
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
	}
}

func TestBestScoreKeepsMaximum(t *testing.T) {
	ctx := context.Background()
	a := newTestArchive(t)

	_, err := a.BestScore(ctx, "w1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.RecordCommit(ctx, result("a", "w1", 50, ledger.OutcomeConfirmed)))
	require.NoError(t, a.RecordCommit(ctx, result("b", "w1", 20, ledger.OutcomeConfirmed)))
	best, err := a.BestScore(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), best.Score)
	assert.Equal(t, "a", best.SessionID)

	require.NoError(t, a.RecordCommit(ctx, result("c", "w1", 90, ledger.OutcomeConfirmed)))
	best, err = a.BestScore(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, uint64(90), best.Score)
	assert.Equal(t, "sig-c", best.Signature)
}

func TestOnlyConfirmedCommitsCount(t *testing.T) {
	ctx := context.Background()
	a := newTestArchive(t)

	failed := result("a", "w2", 500, ledger.OutcomeFailed)
	failed.Step = "sign"
	failed.Error = "signature request cancelled"
	require.NoError(t, a.RecordCommit(ctx, failed))
	require.NoError(t, a.RecordCommit(ctx, result("b", "", 70, ledger.OutcomeSkipped)))

	_, err := a.BestScore(ctx, "w2")
	assert.ErrorIs(t, err, ErrNotFound)

	recs, err := a.RecentCommits(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].SessionID, "newest first")
	assert.Equal(t, "sign", recs[1].Step)
	assert.Equal(t, "failed", recs[1].Outcome)

	recs, err = a.RecentCommits(ctx, "w2", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestLeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	a := newTestArchive(t)
	for i, w := range []string{"w1", "w2", "w3"} {
		require.NoError(t, a.RecordCommit(ctx, result(w, w, uint64(10*(i+1)), ledger.OutcomeConfirmed)))
	}
	top, err := a.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "w3", top[0].Wallet)
	assert.Equal(t, "w2", top[1].Wallet)
}

func TestArchiveFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	a, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.RecordCommit(ctx, result("a", "w1", 12, ledger.OutcomeConfirmed)))
	require.NoError(t, a.Close())

	b, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	best, err := b.BestScore(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), best.Score)
}
