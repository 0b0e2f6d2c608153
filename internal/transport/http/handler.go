package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/app"
	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
	"github.com/gorilla/websocket"
)

// Handler exposes the quiz service over JSON HTTP plus a websocket timer
// feed. This is the renderer boundary: correctness data never leaves it
// except in the detail view of a completed session.
type Handler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register wires all routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.startSession)
	mux.HandleFunc("GET /api/sessions/{code}", h.getSession)
	mux.HandleFunc("POST /api/sessions/{code}/answers", h.submitAnswer)
	mux.HandleFunc("POST /api/sessions/{code}/submit", h.finalizeSession)
	mux.HandleFunc("GET /api/sessions/{code}/detail", h.sessionDetail)
	mux.HandleFunc("GET /api/time/{code}", h.remainingTime)
	mux.HandleFunc("GET /api/admin/sessions", h.activeSessions)
	mux.HandleFunc("GET /ws/timer", h.serveTimer)
}

// questionView strips correctness data before a question reaches a client.
type questionView struct {
	ID      int                 `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options []string            `json:"options,omitempty"`
}

type sessionView struct {
	AccessCode       string         `json:"accessCode"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	TimeLimitSeconds int            `json:"timeLimitSeconds"`
	Questions        []questionView `json:"questions"`
}

type completedView struct {
	Status string        `json:"status"`
	Result domain.Result `json:"result"`
}

type answerRequest struct {
	QuestionID int                `json:"questionId"`
	Answer     domain.AnswerValue `json:"answer"`
}

type timerMessage struct {
	SecondsRemaining int  `json:"secondsRemaining"`
	Expired          bool `json:"expired"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	started, err := h.service.StartSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, state, err := h.service.GetSessionForDisplay(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if state != app.StillActive {
		writeJSON(w, http.StatusGone, completedView{Status: "completed", Result: session.Result()})
		return
	}
	bank := h.service.Bank()
	questions := make([]questionView, 0, len(session.Questions))
	for _, q := range session.Questions {
		questions = append(questions, questionView{ID: q.ID, Type: q.Type, Prompt: q.Prompt, Options: q.Options})
	}
	writeJSON(w, http.StatusOK, sessionView{
		AccessCode:       session.AccessCode,
		Title:            bank.Title,
		Description:      bank.Description,
		TimeLimitSeconds: int(h.service.TimeLimit() / time.Second),
		Questions:        questions,
	})
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid answer payload"))
		return
	}
	if err := h.service.SubmitAnswer(r.Context(), r.PathValue("code"), req.QuestionID, req.Answer); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) finalizeSession(w http.ResponseWriter, r *http.Request) {
	result, alreadyCompleted, err := h.service.FinalizeSession(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.Result
		AlreadyCompleted bool `json:"alreadyCompleted"`
	}{Result: result, AlreadyCompleted: alreadyCompleted})
}

func (h *Handler) sessionDetail(w http.ResponseWriter, r *http.Request) {
	result, reviews, err := h.service.GetSessionDetail(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.Result
		Questions []domain.QuestionReview `json:"questions"`
	}{Result: result, Questions: reviews})
}

func (h *Handler) remainingTime(w http.ResponseWriter, r *http.Request) {
	seconds, expired, err := h.service.GetRemainingTime(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timerMessage{SecondsRemaining: seconds, Expired: expired})
}

func (h *Handler) activeSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ActiveSessions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
}

// serveTimer pushes the remaining-time countdown once a second until the
// session expires or the client goes away. Push-mode replacement for
// polling the timer endpoint.
func (h *Handler) serveTimer(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sendTick := func() (stop bool) {
		seconds, expired, err := h.service.GetRemainingTime(r.Context(), code)
		if err != nil {
			_ = conn.WriteJSON(errorBody(errMessage(err)))
			return true
		}
		if err := conn.WriteJSON(timerMessage{SecondsRemaining: seconds, Expired: expired}); err != nil {
			return true
		}
		return expired
	}

	if sendTick() {
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			if sendTick() {
				return
			}
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("invalid access code"))
	case errors.Is(err, domain.ErrSessionCompleted):
		writeJSON(w, http.StatusConflict, errorBody("session already completed"))
	case errors.Is(err, domain.ErrSessionActive):
		writeJSON(w, http.StatusConflict, errorBody("session still in progress"))
	case errors.Is(err, domain.ErrQuestionNotFound):
		writeJSON(w, http.StatusBadRequest, errorBody("question not found"))
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage unavailable, retry shortly"))
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errMessage(err error) string {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "invalid access code"
	}
	return "internal error"
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
