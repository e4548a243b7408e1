package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

type GameHandler struct {
	service     *app.GameService
	defaultMode domain.Mode
}

func NewGameHandler(service *app.GameService, defaultMode domain.Mode) *GameHandler {
	return &GameHandler{service: service, defaultMode: defaultMode}
}

type startRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Mode  string `json:"mode"`
}

type answerRequest struct {
	Choice string `json:"choice"`
}

func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return
	}
	mode, err := resolveMode(req.Mode, h.defaultMode)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := h.service.StartGame(r.Context(), domain.Identity{Name: req.Name, Email: req.Email}, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Answer submits a choice. An answer that cannot be taken right now is not an
// error: the response carries accepted=false and the unchanged state.
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return
	}
	result, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"), req.Choice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GameHandler) Advance(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.service.Leave(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard serves the ranked board; name and score highlight the player who
// just finished.
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	var highlight *domain.Highlight
	if name := r.URL.Query().Get("name"); name != "" {
		score, err := strconv.Atoi(r.URL.Query().Get("score"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "score must be an integer"})
			return
		}
		highlight = &domain.Highlight{Name: name, Score: score}
	}
	writeJSON(w, http.StatusOK, h.service.Leaderboard(r.Context(), highlight))
}

func resolveMode(raw string, fallback domain.Mode) (domain.Mode, error) {
	if raw == "" {
		return fallback, nil
	}
	return domain.ParseMode(raw)
}
