package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"SolanaRogue/internal/ledger"
	"SolanaRogue/internal/store"
)

func (a *App) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", a.serveWS)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /api/scores/{wallet}", a.handleBestScore)
	mux.HandleFunc("GET /api/commits", a.handleCommits)
	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorDTO{Message: message})
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, 100)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.hub.Mu.Lock()
	rooms := len(a.hub.Rooms)
	a.hub.Mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"rooms":   rooms,
		"commits": a.committer != nil,
	})
}

func (a *App) handleBestScore(w http.ResponseWriter, r *http.Request) {
	wallet := r.PathValue("wallet")
	if _, err := ledger.ParsePublicKey(wallet); err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}
	best, err := a.archive.BestScore(r.Context(), wallet)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no confirmed score")
		return
	}
	if err != nil {
		a.log.Error().Err(err).Msg("best score query")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (a *App) handleCommits(w http.ResponseWriter, r *http.Request) {
	recs, err := a.archive.RecentCommits(r.Context(), r.URL.Query().Get("wallet"), queryLimit(r, 20))
	if err != nil {
		a.log.Error().Err(err).Msg("commit query")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (a *App) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := a.archive.Leaderboard(r.Context(), queryLimit(r, 10))
	if err != nil {
		a.log.Error().Err(err).Msg("leaderboard query")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, top)
}
