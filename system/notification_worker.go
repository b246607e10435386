package system

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"task-notifier/cache"
	"task-notifier/common"
	"task-notifier/entity"
	"task-notifier/web"
	"task-notifier/ws"
)

type NotificationJob struct {
	UserID   int
	TaskID   int
	Kind     string
	Title    string
	Message  string
	Priority entity.Priority
}

// NotificationInserter persists notifications. storage.Store implements it.
type NotificationInserter interface {
	InsertNotification(ctx context.Context, n entity.Notification) (int, error)
}

type NotificationWorkerPool struct {
	Store     NotificationInserter
	Hub       *ws.Hub
	JobQueue  chan NotificationJob
	NumWorker int
	logger    *zap.Logger
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

func NewNotificationWorkerPool(store NotificationInserter, hub *ws.Hub, numWorker int, logger *zap.Logger) *NotificationWorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorkerPool{
		Store:     store,
		Hub:       hub,
		JobQueue:  make(chan NotificationJob, 100),
		NumWorker: numWorker,
		logger:    logger,
	}
}

// Start runs the workers until Stop. Jobs see the values of ctx but not its
// cancellation, so queued jobs still drain after the caller's ctx is done.
func (p *NotificationWorkerPool) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < p.NumWorker; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the queue and waits for queued jobs to drain.
func (p *NotificationWorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.JobQueue)
	})
	p.wg.Wait()
}

// Enqueue never blocks; it reports false when the queue is full.
func (p *NotificationWorkerPool) Enqueue(job NotificationJob) bool {
	if p == nil {
		return false
	}
	select {
	case p.JobQueue <- job:
		return true
	default:
		p.logger.Warn("notification queue full, dropping job", zap.Int("user_id", job.UserID), zap.String("title", job.Title))
		return false
	}
}

func (p *NotificationWorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.JobQueue {
		if err := p.process(ctx, job); err != nil {
			p.logger.Error("notification job failed", zap.Int("worker", id), zap.Int("user_id", job.UserID), zap.Error(err))
		}
	}
	p.logger.Debug("notification worker shutting down", zap.Int("worker", id))
}

// process persists the job, drops the user's cached bundle and pushes the
// notification to a connected client.
func (p *NotificationWorkerPool) process(ctx context.Context, job NotificationJob) error {
	n := entity.Notification{
		UserID:    job.UserID,
		TaskID:    job.TaskID,
		Kind:      job.Kind,
		Title:     job.Title,
		Message:   job.Message,
		Priority:  job.Priority,
		CreatedAt: time.Now(),
	}
	id, err := p.Store.InsertNotification(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id

	if err := cache.Delete(ctx, cache.BundleKey(job.UserID)); err != nil {
		p.logger.Warn("bundle cache invalidation failed", zap.Int("user_id", job.UserID), zap.Error(err))
	}

	push, err := common.NewPushJob(job.UserID, common.WSMessage{
		Event:     common.EventNotification,
		TaskID:    job.TaskID,
		Title:     job.Title,
		Payload:   n,
		Timestamp: n.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	p.Hub.Push(push)
	return nil
}

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Store.ListNotifications(r.Context(), userID)
	if err != nil {
		h.Logger.Error("list notifications", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "Error querying notifications", http.StatusInternalServerError)
		return
	}
	web.RenderJSON(w, http.StatusOK, notifications)
}
