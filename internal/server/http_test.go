package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SolanaRogue/internal/ledger"
	"SolanaRogue/internal/store"
)

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	_, srv := newTestApp(t, &fakeLedger{})
	var body map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["commits"])
}

func TestHealthzWithoutLedger(t *testing.T) {
	_, srv := newTestApp(t, nil)
	var body map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, false, body["commits"])
}

func TestScoreEndpoints(t *testing.T) {
	app, srv := newTestApp(t, nil)
	wallet := publicKeyOf(testWalletKey()).String()

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/scores/not-a-wallet", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/scores/"+wallet, nil))

	now := time.Now().UTC()
	for i, score := range []uint64{40, 25} {
		require.NoError(t, app.archive.RecordCommit(context.Background(), ledger.CommitResult{
			SessionID:  []string{"a", "b"}[i],
			Wallet:     wallet,
			Score:      score,
			Outcome:    ledger.OutcomeConfirmed,
			StartedAt:  now,
			FinishedAt: now,
		}))
	}

	var best store.BestScore
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/scores/"+wallet, &best))
	assert.Equal(t, uint64(40), best.Score)

	var commits []store.CommitRecord
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/commits?limit=1", &commits))
	require.Len(t, commits, 1)
	assert.Equal(t, "b", commits[0].SessionID)

	var top []store.BestScore
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/leaderboard", &top))
	require.Len(t, top, 1)
	assert.Equal(t, wallet, top[0].Wallet)
}
