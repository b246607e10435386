package system

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"task-notifier/cache"
	"task-notifier/component"
	"task-notifier/web"
)

// announcementTTL bounds how long a dismissal is remembered.
const announcementTTL = 90 * 24 * time.Hour

func (h *Handler) VerifyEmailError(w http.ResponseWriter, r *http.Request) {
	view := component.VerificationError(r.URL.Query().Get("reason"))
	h.Renderer.Render(w, r, http.StatusOK, web.PageVerifyError, web.PageData{
		Title: "Email verification failed",
		View:  view,
	})
}

func (h *Handler) ThankYou(w http.ResponseWriter, r *http.Request) {
	view := component.ThankYou()
	h.Renderer.Render(w, r, http.StatusOK, web.PageThankYou, web.PageData{
		Title: view.Heading,
		View:  view,
	})
}

func (h *Handler) announcementDismissed(r *http.Request, userID int) bool {
	_, err := cache.Get(r.Context(), cache.AnnouncementKey(userID, h.Announcement.ID))
	if err == nil {
		return true
	}
	if !cache.IsMiss(err) {
		h.Logger.Warn("announcement state read failed", zap.Int("user_id", userID), zap.Error(err))
	}
	return false
}

func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dismissed := h.Announcement.Enabled() && h.announcementDismissed(r, userID)
	view := component.RenderAnnouncement(h.Announcement, dismissed)
	h.Renderer.Render(w, r, http.StatusOK, web.PageAnnouncement, web.PageData{
		Title:   view.Title,
		View:    view,
		Visible: view.Open,
	})
}

func (h *Handler) DismissAnnouncement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.Announcement.Enabled() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := cache.Set(r.Context(), cache.AnnouncementKey(userID, h.Announcement.ID), "1", announcementTTL); err != nil {
		h.Logger.Error("store announcement dismissal", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Error saving dismissal", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
