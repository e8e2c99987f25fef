package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// RecentHandler serves the most recent finished games as JSON.
func RecentHandler(a *Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxRecentLimit)
		}

		games, err := a.Recent(r.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("failed to load recent games")
			http.Error(w, "failed to load recent games", http.StatusInternalServerError)
			return
		}
		if games == nil {
			games = []Game{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(games); err != nil {
			log.Error().Err(err).Msg("failed to encode recent games")
		}
	}
}
