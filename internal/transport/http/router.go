package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

// NewRouter exposes the game service over REST and WebSocket. defaultMode is used
// when a client does not ask for one.
func NewRouter(service *app.GameService, defaultMode domain.Mode) http.Handler {
	games := NewGameHandler(service, defaultMode)
	ws := NewWSHandler(service, defaultMode)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/leaderboard", games.Leaderboard)
	r.Get("/ws", ws.ServeWS)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", games.Start)
		r.Get("/{id}", games.State)
		r.Post("/{id}/answers", games.Answer)
		r.Post("/{id}/advance", games.Advance)
		r.Delete("/{id}", games.Leave)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentity), errors.Is(err, domain.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrGameClosed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCatalog):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
