package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tanuja-67/vle-management/internal/app"
	"github.com/tanuja-67/vle-management/internal/domain"
)

// CandidateProvider serves the ranked candidate list, usually through the
// candidate cache.
type CandidateProvider interface {
	Candidates(ctx context.Context) ([]domain.Candidate, error)
}

// Handler exposes the VLE workflow as a REST API.
type Handler struct {
	registry        *app.RegistryService
	quiz            *app.QuizService
	selection       *app.SelectionService
	recommendations *app.RecommendationService
	candidates      CandidateProvider
	defaultMinScore int
	log             *zap.SugaredLogger
}

func NewHandler(registry *app.RegistryService, quiz *app.QuizService, selection *app.SelectionService, recommendations *app.RecommendationService, candidates CandidateProvider, defaultMinScore int, log *zap.SugaredLogger) *Handler {
	return &Handler{
		registry:        registry,
		quiz:            quiz,
		selection:       selection,
		recommendations: recommendations,
		candidates:      candidates,
		defaultMinScore: defaultMinScore,
		log:             log,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/villagers", h.listVillagers)
	mux.HandleFunc("POST /api/villagers", h.createVillager)
	mux.HandleFunc("PATCH /api/villagers/{id}/quiz", h.completeQuiz)
	mux.HandleFunc("GET /api/quiz/questions", h.listQuestions)

	mux.HandleFunc("GET /api/vles", h.listVLEs)
	mux.HandleFunc("GET /api/vles/candidates", h.listCandidates)
	mux.HandleFunc("POST /api/vles/select", h.selectVLEs)
	mux.HandleFunc("PATCH /api/vles/{id}/status", h.updateVLEStatus)
	mux.HandleFunc("DELETE /api/vles/{id}", h.removeVLE)
	mux.HandleFunc("GET /api/vles/stats", h.stats)

	mux.HandleFunc("GET /api/vles/working", h.listWorking)
	mux.HandleFunc("POST /api/vles/working/{id}/toggle", h.toggleWorking)
	mux.HandleFunc("POST /api/vles/working/confirm", h.confirmWorking)

	mux.HandleFunc("GET /api/recommendations", h.listRecommendations)
	mux.HandleFunc("POST /api/recommendations", h.createRecommendation)
}

func (h *Handler) listVillagers(w http.ResponseWriter, r *http.Request) {
	villagers, err := h.registry.Villagers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, villagers)
}

func (h *Handler) createVillager(w http.ResponseWriter, r *http.Request) {
	var in app.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	villager, err := h.registry.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	villagersRegistered.Inc()
	h.writeJSON(w, http.StatusCreated, villager)
}

func (h *Handler) completeQuiz(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers map[int]int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.quiz.Complete(r.Context(), r.PathValue("id"), body.Answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	quizzesCompleted.Inc()
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.quiz.Questions())
}

func (h *Handler) listVLEs(w http.ResponseWriter, r *http.Request) {
	selected, err := h.selection.Selected(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, selected)
}

func (h *Handler) listCandidates(w http.ResponseWriter, r *http.Request) {
	minScore := h.defaultMinScore
	if raw := r.URL.Query().Get("minScore"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 100 {
			h.writeMessage(w, http.StatusBadRequest, "minScore must be an integer between 0 and 100")
			return
		}
		minScore = parsed
	}
	ranked, err := h.candidates.Candidates(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, app.Filter(ranked, minScore))
}

func (h *Handler) selectVLEs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VillagerIDs []string `json:"villagerIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	count, err := h.selection.Select(r.Context(), body.VillagerIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	vlesConfirmed.Add(float64(count))
	h.writeJSON(w, http.StatusOK, map[string]int{"selected": count})
}

func (h *Handler) updateVLEStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.SelectionStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.selection.UpdateStatus(r.Context(), r.PathValue("id"), body.Status); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

func (h *Handler) removeVLE(w http.ResponseWriter, r *http.Request) {
	if err := h.selection.RemoveSelected(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.selection.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) listWorking(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.selection.Working())
}

func (h *Handler) toggleWorking(w http.ResponseWriter, r *http.Request) {
	selected, err := h.selection.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"selected": selected})
}

func (h *Handler) confirmWorking(w http.ResponseWriter, r *http.Request) {
	count, err := h.selection.Confirm(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	vlesConfirmed.Add(float64(count))
	h.writeJSON(w, http.StatusOK, map[string]int{"confirmed": count})
}

func (h *Handler) listRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recommendations.Recommendations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) createRecommendation(w http.ResponseWriter, r *http.Request) {
	var req app.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.recommendations.Recommend(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	recommendationsGenerated.Inc()
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorw("write response", "error", err)
	}
}

// writeMessage emits the {message} error body the API clients expect.
func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"message": msg})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrQuizNotCompleted),
		errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrInvalidStatus):
		h.writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrVillagerNotFound),
		errors.Is(err, domain.ErrSelectionNotFound):
		h.writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadySelected),
		errors.Is(err, domain.ErrStatusTransition):
		h.writeMessage(w, http.StatusConflict, err.Error())
	default:
		h.log.Errorw("request failed", "error", err)
		h.writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
