/* handlers.go
 * Contains the HTTP handlers of the bracket viewer and the admin result form
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"errors"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to encode response:", err)
	}
}

// writeError maps API errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, shared.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, shared.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, shared.ErrMatchNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, shared.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "store unavailable"
	}
	if status >= http.StatusInternalServerError {
		log.Println("request failed:", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBracket serves the materialized rounds of a cycle, from the cache when possible
func (s *Server) handleBracket(w http.ResponseWriter, r *http.Request) {
	cycle, err := shared.ParseCycle(chi.URLParam(r, "cycle"))
	if err != nil {
		writeError(w, err)
		return
	}

	body, hit, err := s.cache.GetBracket(r.Context(), cycle)
	if err != nil {
		log.Println("bracket cache read failed:", err)
	}
	if s.cache.Enabled() {
		s.metrics.ObserveCache(hit)
	}
	if !hit {
		rounds, err := s.api.GetBracket(r.Context(), cycle)
		if err != nil {
			writeError(w, err)
			return
		}
		if body, err = json.Marshal(rounds); err != nil {
			writeError(w, err)
			return
		}
		if err := s.cache.SetBracket(r.Context(), cycle, body); err != nil {
			log.Println("bracket cache write failed:", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleTeams serves the roster, optionally filtered with ?cycle=
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	var cycle shared.Cycle
	if q := r.URL.Query().Get("cycle"); q != "" {
		parsed, err := shared.ParseCycle(q)
		if err != nil {
			writeError(w, err)
			return
		}
		cycle = parsed
	}

	teams, err := s.api.GetTeams(r.Context(), cycle)
	if err != nil {
		writeError(w, err)
		return
	}
	if teams == nil {
		teams = []shared.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleLogin exchanges the admin password for a bearer token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, shared.Invalid("body", "expected {username, password}"))
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "web"
	}
	session, err := s.api.Login(shared.User{UserID: "web:" + username, Username: username}, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	session.IssuedAt = s.now()
	token, err := s.issueToken(session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// handleResult records the sets of a match for the holder of a bearer token
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || matchID <= 0 {
		writeError(w, shared.Invalid("id", "'%s' is not a match id", chi.URLParam(r, "id")))
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, shared.Invalid("body", "expected {sets: [{team1, team2}]}"))
		return
	}

	outcome, err := s.api.SubmitResult(r.Context(), s.session(r), matchID, req.Sets)
	if outcome.Match.ID > 0 {
		if err := s.cache.InvalidateBracket(r.Context(), outcome.Match.Cycle); err != nil {
			log.Println("bracket cache invalidation failed:", err)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	res := resultResponse{Match: outcome.Match, Winner: outcome.Evaluation.Winner.String(), Steps: outcome.Steps}
	if outcome.Evaluation.Winner == logic.SideNone {
		res.Winner = ""
	}
	writeJSON(w, http.StatusOK, res)
}
