package system

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-notifier/common"
	"task-notifier/component"
	"task-notifier/entity"
	"task-notifier/storage"
	"task-notifier/web"
)

const welcomeTitle = "Welcome to Task Notifier!"

// LoginResponse carries the session token and, when something is pending,
// the login summary. LoginNotifications is null otherwise.
type LoginResponse struct {
	Message            string                 `json:"message"`
	Token              string                 `json:"token"`
	LoginNotifications *component.SummaryView `json:"loginNotifications"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var user entity.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	id, err := h.Store.CreateUser(r.Context(), user.Username, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			http.Error(w, "Username may already exist", http.StatusBadRequest)
		} else {
			h.Logger.Error("create user", zap.Error(err))
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return
	}

	h.Pool.Enqueue(NotificationJob{
		UserID:  id,
		Kind:    entity.KindWelcome,
		Title:   welcomeTitle,
		Message: "Create your first task to get started.",
	})

	web.RenderJSON(w, http.StatusCreated, map[string]string{
		"message": "Registration successful",
		"next":    "/register/thank-you",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds entity.User
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Store.UserByUsername(r.Context(), creds.Username)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Error("query user", zap.Error(err))
		http.Error(w, "DB query error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := common.GenerateToken(user.ID, h.TokenTTL)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := LoginResponse{Message: "Login successful", Token: tokenString}

	// A failing summary must not block the login itself.
	bundle, err := h.loadBundle(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("load login summary", zap.Int("user_id", user.ID), zap.Error(err))
	} else if h.openSummary(user.ID, bundle) {
		resp.LoginNotifications = component.Render(bundle, h.now())
		h.pushSummary(user.ID, resp.LoginNotifications)
	}

	web.RenderJSON(w, http.StatusOK, resp)
}

// pushSummary mirrors the login summary to other open sessions of the user.
func (h *Handler) pushSummary(userID int, view *component.SummaryView) {
	job, err := common.NewPushJob(userID, common.WSMessage{
		Event:     common.EventLoginSummary,
		Payload:   view,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.Logger.Warn("encode login summary event", zap.Error(err))
		return
	}
	h.Hub.Push(job)
}
