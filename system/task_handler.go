package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"task-notifier/common"
	"task-notifier/component"
	"task-notifier/entity"
	"task-notifier/storage"
	"task-notifier/web"
)

// taskRequest is the body of create and update calls. Empty fields are left
// unchanged on update.
type taskRequest struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
}

type taskListResponse struct {
	Tasks      []entity.Task `json:"tasks"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(storage.DateLayout, s)
}

func taskID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func (h *Handler) pushTaskEvent(userID int, event string, task entity.Task) {
	job, err := common.NewPushJob(userID, common.WSMessage{
		Event:     event,
		TaskID:    task.ID,
		Title:     task.Title,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.Logger.Warn("encode task event", zap.Error(err))
		return
	}
	h.Hub.Push(job)
}

func (h *Handler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	status := query.Get("status")
	if status != "" {
		if !component.ValidStatus(status) {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		status = component.NormalizeStatus(status)
	}

	tasks, total, err := h.Store.ListTasks(r.Context(), userID, storage.TaskFilter{
		Status: status,
		Search: query.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.Logger.Error("list tasks", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	web.RenderJSON(w, http.StatusOK, taskListResponse{
		Tasks:      tasks,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	task, err := h.Store.GetTask(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	} else if err != nil {
		h.Logger.Error("get task", zap.Int("task_id", id), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	web.RenderJSON(w, http.StatusOK, task)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	status := entity.StatusTodo
	if req.Status != "" {
		if !component.ValidStatus(req.Status) {
			http.Error(w, "Status must be one of: todo, in_progress, done", http.StatusBadRequest)
			return
		}
		status = component.NormalizeStatus(req.Status)
	}
	if req.Priority != "" && !entity.Priority(req.Priority).Known() {
		http.Error(w, "Priority must be one of: urgent, high, medium, low", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		http.Error(w, "dueDate must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	task, err := h.Store.CreateTask(r.Context(), entity.Task{
		UserID:   userID,
		Title:    title,
		Status:   status,
		Priority: entity.Priority(req.Priority).Normalize(),
		DueDate:  dueDate,
	})
	if err != nil {
		h.Logger.Error("create task", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	h.invalidateBundle(r.Context(), userID)
	web.RenderJSON(w, http.StatusCreated, task)

	h.pushTaskEvent(userID, common.EventTaskCreated, task)
	h.Pool.Enqueue(NotificationJob{
		UserID:   userID,
		TaskID:   task.ID,
		Title:    "Task created",
		Message:  fmt.Sprintf("New task created: %s", task.Title),
		Priority: task.Priority,
	})
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" && req.Status == "" && req.Priority == "" && req.DueDate == "" {
		http.Error(w, "At least one field must be provided", http.StatusBadRequest)
		return
	}
	if req.Status != "" && !component.ValidStatus(req.Status) {
		http.Error(w, "Status must be one of: todo, in_progress, done", http.StatusBadRequest)
		return
	}
	if req.Priority != "" && !entity.Priority(req.Priority).Known() {
		http.Error(w, "Priority must be one of: urgent, high, medium, low", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		http.Error(w, "dueDate must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	task, err := h.Store.GetTask(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	} else if err != nil {
		h.Logger.Error("get task", zap.Int("task_id", id), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	wasDone := task.Status == entity.StatusDone
	if title := strings.TrimSpace(req.Title); title != "" {
		task.Title = title
	}
	if req.Status != "" {
		task.Status = component.NormalizeStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = entity.Priority(req.Priority).Normalize()
	}
	if !dueDate.IsZero() {
		task.DueDate = dueDate
	}

	task, err = h.Store.UpdateTask(r.Context(), task)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	} else if err != nil {
		h.Logger.Error("update task", zap.Int("task_id", id), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	h.invalidateBundle(r.Context(), userID)
	web.RenderJSON(w, http.StatusOK, task)

	h.pushTaskEvent(userID, common.EventTaskUpdated, task)
	if task.Status == entity.StatusDone && !wasDone {
		h.Pool.Enqueue(NotificationJob{
			UserID:   userID,
			TaskID:   task.ID,
			Title:    "Task completed",
			Message:  fmt.Sprintf("Task '%s' marked as done.", task.Title),
			Priority: entity.PriorityLow,
		})
	}
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	err = h.Store.DeleteTask(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, fmt.Sprintf("Task with ID %d not found or unauthorized", id), http.StatusNotFound)
		return
	} else if err != nil {
		h.Logger.Error("delete task", zap.Int("task_id", id), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	h.invalidateBundle(r.Context(), userID)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("Task with ID %d deleted successfully", id)))
	h.pushTaskEvent(userID, common.EventTaskDeleted, entity.Task{ID: id})
}
