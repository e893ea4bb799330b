package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-arena/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	engine    *Engine
	projector *ResultProjector
}

func NewHandler(engine *Engine, projector *ResultProjector) *Handler {
	return &Handler{engine: engine, projector: projector}
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.engine.ListActiveGames()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slug := vars["slug"]

	game, err := h.engine.GetGameBySlug(slug)
	if err != nil || !game.IsActive {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(game)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	clientID, ok := r.Context().Value("client_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	slug := mux.Vars(r)["slug"]

	session, _, err := h.engine.Start(clientID, slug)
	if err != nil {
		h.writeError(w, err)
		return
	}

	log.Printf("Client %d started session %d for game %s", clientID, session.ID, slug)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]uint{"session_id": session.ID})
}

func (h *Handler) LoadForPlay(w http.ResponseWriter, r *http.Request) {
	clientID, ok := r.Context().Value("client_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	slug := mux.Vars(r)["slug"]
	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	state, err := h.engine.LoadForPlay(clientID, slug, sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The play payload never includes the correct choice.
	questionSet := make([]models.QuestionDTO, len(state.Questions))
	for i, q := range state.Questions {
		questionSet[i] = q.ToDTO(false)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"game":               state.Game,
		"session":            state.Session,
		"question_set":       questionSet,
		"current_question":   state.CurrentIndex,
		"lives_remaining":    state.LivesRemaining,
		"time_limit_seconds": state.TimeLimitSeconds,
		"time_remaining":     state.TimeRemaining,
	})
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	clientID, ok := r.Context().Value("client_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	slug := mux.Vars(r)["slug"]
	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	var submission FinishSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.engine.Finish(clientID, slug, sessionID, &submission)
	if err != nil {
		h.writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(session)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	clientID, ok := r.Context().Value("client_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	slug := mux.Vars(r)["slug"]
	sessionID, err := sessionIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	session, game, err := h.engine.GetOwnedSession(clientID, slug, sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.projector.Project(session, game)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"game":    game,
		"session": result.Session,
		"answers": result.Answers,
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	clientID, ok := r.Context().Value("client_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessions, err := h.engine.SessionHistory(clientID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(sessions)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sessionIDFromPath(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["sessionID"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
