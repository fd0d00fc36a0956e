package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mjashby/forage/internal/apperr"
	"github.com/mjashby/forage/internal/tracker"
)

// Handler holds API route handlers.
type Handler struct {
	svc *tracker.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

// ListFoods handles GET /foods: every known alias, alphabetical.
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	items := toAliasItems(h.svc.Aliases(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"foods": items,
		"total": len(items),
	})
}

// Match handles POST /match: free text in, candidate matches out.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	matches := h.svc.ProcessText(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"matches": toAliasItems(matches),
	})
}

// LogFoods handles POST /log: confirmed aliases become events.
func (h *Handler) LogFoods(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Aliases) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("aliases are required"))
		return
	}

	created, err := h.svc.LogFoods(r.Context(), req.Aliases)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		} else {
			slog.Error("log foods failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"added": len(created),
		"week":  toWeekItem(h.svc.CurrentWeek(r.Context()), h.svc.Goal()),
	})
}

// ListEvents handles GET /log.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	items := toEventItems(h.svc.History(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"events": items,
		"total":  len(items),
	})
}

// ClearEvents handles DELETE /log.
func (h *Handler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context()); err != nil {
		slog.Error("clear history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWeeks handles GET /weeks: per-week summaries, most recent first.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	items := toWeekItems(h.svc.Weeks(r.Context()), h.svc.Goal())
	if items == nil {
		items = []WeekItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weeks": items,
	})
}

// CurrentWeek handles GET /weeks/current.
func (h *Handler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toWeekItem(h.svc.CurrentWeek(r.Context()), h.svc.Goal()))
}

// GetWeekStart handles GET /settings/week-start.
func (h *Handler) GetWeekStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WeekStartSetting{WeekStart: h.svc.WeekStart(r.Context())})
}

// PutWeekStart handles PUT /settings/week-start.
func (h *Handler) PutWeekStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req WeekStartSetting
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SetWeekStart(r.Context(), req.WeekStart); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("week_start must be between 0 and 6"))
		return
	}
	writeJSON(w, http.StatusOK, WeekStartSetting{WeekStart: h.svc.WeekStart(r.Context())})
}
