package scoreboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"akaun-master/internal/scoring"
)

const maxBodyBytes = 4 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var rec scoring.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed record"})
		return
	}

	if err := s.store.Submit(r.Context(), rec); err != nil {
		if errors.Is(err, scoring.ErrInvalidRecord) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("could not store record", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not store record"})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleList serves the leaderboard, best first. Optional query parameters:
// level filters by level id, limit caps the number of rows.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := s.store.History(r.Context())
	if err != nil {
		s.logger.Error("could not load history", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load history"})
		return
	}

	records = scoring.Top(scoring.ForLevel(records, r.URL.Query().Get("level")), limit)
	if records == nil {
		records = []scoring.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
