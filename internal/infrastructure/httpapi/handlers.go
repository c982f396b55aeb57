package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/version"
)

const maxRequestBytes = 64 << 10

type askRequest struct {
	Query string `json:"query"`
	Repo  string `json:"repo"`
}

type askResponse struct {
	Success   bool   `json:"success"`
	Query     string `json:"query"`
	RequestID string `json:"request_id"`
	FromCache bool   `json:"from_cache"`
	domain.AssistantResponse
	Timestamp string `json:"timestamp"`
}

type statusResponse struct {
	Success     bool                   `json:"success"`
	State       domain.RepositoryState `json:"state"`
	Clean       bool                   `json:"clean"`
	Fingerprint string                 `json:"fingerprint"`
	Insights    []domain.Insight       `json:"insights"`
	Timestamp   string                 `json:"timestamp"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("request body must be a JSON object with a query"))
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("no query provided"))
		return
	}

	result, err := s.assistant.Assist(r.Context(), domain.AssistRequest{
		Utterance:      query,
		RepositoryPath: s.repo(req.Repo),
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Success:           true,
		Query:             query,
		RequestID:         result.RequestID,
		FromCache:         result.FromCache,
		AssistantResponse: result.Response,
		Timestamp:         timestamp(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := s.states.Read(r.Context(), s.repo(r.URL.Query().Get("repo")))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Success:     true,
		State:       state,
		Clean:       state.IsClean(),
		Fingerprint: state.Fingerprint(),
		Insights:    state.Insights(),
		Timestamp:   timestamp(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Version:   version.Version,
		Timestamp: timestamp(),
	})
}

func (s *Server) repo(requested string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	if s.defaultRepo != "" {
		return s.defaultRepo
	}
	return "."
}

func timestamp() string {
	return time.Now().UTC().Format(domain.TimestampFormat)
}
