package system

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"task-notifier/component"
	"task-notifier/web"
)

// SummaryResponse reports the popup state and its content. Summary is always
// rendered so clients can show the empty state on demand.
type SummaryResponse struct {
	Visible bool                   `json:"visible"`
	Summary *component.SummaryView `json:"summary"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) (SummaryResponse, bool) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return SummaryResponse{}, false
	}
	bundle, err := h.loadBundle(r.Context(), userID)
	if err != nil {
		h.Logger.Error("load login summary", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Error loading notifications", http.StatusInternalServerError)
		return SummaryResponse{}, false
	}
	return SummaryResponse{
		Visible: h.openSummary(userID, bundle),
		Summary: component.Render(bundle, h.now()),
	}, true
}

func (h *Handler) GetLoginSummary(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.summary(w, r)
	if !ok {
		return
	}
	web.RenderJSON(w, http.StatusOK, resp)
}

func (h *Handler) LoginSummaryPage(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.summary(w, r)
	if !ok {
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, web.PageSummary, web.PageData{
		Title:   resp.Summary.Title,
		View:    resp.Summary,
		Visible: resp.Visible,
	})
}

// DismissLoginSummary closes the popup as a whole. Dismissing a popup that is
// not open is a no-op reported as closed=false.
func (h *Handler) DismissLoginSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	closed := h.Popups.Close(userID)
	web.RenderJSON(w, http.StatusOK, map[string]bool{"closed": closed})
}

type markReadRequest struct {
	IDs []int `json:"ids"`
}

func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		http.Error(w, "ids are required", http.StatusBadRequest)
		return
	}
	if err := h.Store.MarkNotificationsRead(r.Context(), userID, req.IDs); err != nil {
		h.Logger.Error("mark notifications read", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	h.invalidateBundle(r.Context(), userID)
	w.WriteHeader(http.StatusNoContent)
}
