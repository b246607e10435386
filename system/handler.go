package system

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"task-notifier/cache"
	"task-notifier/common"
	"task-notifier/component"
	"task-notifier/entity"
	"task-notifier/storage"
	"task-notifier/web"
	"task-notifier/ws"
)

// Handler serves the HTTP API. Zero-valued optional fields (Pool, Hub,
// Metrics) disable the corresponding side effects.
type Handler struct {
	Store        *storage.Store
	Pool         *NotificationWorkerPool
	Hub          *ws.Hub
	Renderer     *web.Renderer
	Logger       *zap.Logger
	Metrics      *SummaryMetrics
	Popups       *component.PopupRegistry
	Announcement component.Announcement
	CacheTTL     time.Duration
	TokenTTL     time.Duration

	nowFunc func() time.Time
}

type Options struct {
	Pool         *NotificationWorkerPool
	Hub          *ws.Hub
	Renderer     *web.Renderer
	Logger       *zap.Logger
	Metrics      *SummaryMetrics
	Announcement component.Announcement
	CacheTTL     time.Duration
	Now          func() time.Time
}

func NewHandler(store *storage.Store, opts Options) *Handler {
	h := &Handler{
		Store:        store,
		Pool:         opts.Pool,
		Hub:          opts.Hub,
		Renderer:     opts.Renderer,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
		Announcement: opts.Announcement,
		CacheTTL:     opts.CacheTTL,
		TokenTTL:     24 * time.Hour,
		nowFunc:      opts.Now,
	}
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	if h.Renderer == nil {
		h.Renderer = web.NewRenderer(h.Logger)
	}
	if h.CacheTTL <= 0 {
		h.CacheTTL = 5 * time.Minute
	}
	h.Popups = component.NewPopupRegistry(h.summaryClosed)
	return h
}

func (h *Handler) now() time.Time {
	if h.nowFunc != nil {
		return h.nowFunc()
	}
	return time.Now()
}

func currentUser(r *http.Request) (int, bool) {
	return common.UserIDFromContext(r.Context())
}

// SummaryMetrics counts login popup lifecycle events.
type SummaryMetrics struct {
	opened prometheus.Counter
	closed prometheus.Counter
}

func NewSummaryMetrics(reg prometheus.Registerer) *SummaryMetrics {
	m := &SummaryMetrics{
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "login_summary_opened_total",
			Help: "Login summaries that became visible.",
		}),
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "login_summary_closed_total",
			Help: "Login summaries dismissed by their user.",
		}),
	}
	reg.MustRegister(m.opened, m.closed)
	return m
}

func (m *SummaryMetrics) incOpened() {
	if m != nil {
		m.opened.Inc()
	}
}

func (m *SummaryMetrics) incClosed() {
	if m != nil {
		m.closed.Inc()
	}
}

// loadBundle returns the cached bundle of userID or builds and caches a new one.
func (h *Handler) loadBundle(ctx context.Context, userID int) (*entity.NotificationBundle, error) {
	key := cache.BundleKey(userID)
	cached, err := cache.Get(ctx, key)
	if err == nil {
		var b entity.NotificationBundle
		if err := json.Unmarshal([]byte(cached), &b); err == nil {
			return &b, nil
		}
		h.Logger.Warn("discarding unreadable cached bundle", zap.Int("user_id", userID))
	} else if !cache.IsMiss(err) {
		h.Logger.Warn("bundle cache read failed", zap.Int("user_id", userID), zap.Error(err))
	}

	b, err := h.Store.LoadBundle(ctx, userID, h.now())
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(b); err == nil {
		if err := cache.Set(ctx, key, string(data), h.CacheTTL); err != nil {
			h.Logger.Warn("bundle cache write failed", zap.Int("user_id", userID), zap.Error(err))
		}
	}
	return b, nil
}

func (h *Handler) invalidateBundle(ctx context.Context, userID int) {
	if err := cache.Delete(ctx, cache.BundleKey(userID)); err != nil {
		h.Logger.Warn("bundle cache invalidation failed", zap.Int("user_id", userID), zap.Error(err))
	}
}

// openSummary hands the bundle to the user's popup and reports visibility.
func (h *Handler) openSummary(userID int, b *entity.NotificationBundle) bool {
	visible, started := h.Popups.Open(userID, b)
	if started {
		h.Metrics.incOpened()
	}
	return visible
}

// summaryClosed runs once per dismissed popup. The shown notifications stay out
// of later popups and the cached bundle is dropped.
func (h *Handler) summaryClosed(userID int, b *entity.NotificationBundle) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.Metrics.incClosed()
	h.invalidateBundle(ctx, userID)
	if b == nil {
		return
	}
	ids := make([]int, 0, len(b.PopupNotifications))
	for _, n := range b.PopupNotifications {
		ids = append(ids, n.ID)
	}
	if err := h.Store.DismissPopupNotifications(ctx, userID, ids); err != nil {
		h.Logger.Error("dismiss popup notifications", zap.Int("user_id", userID), zap.Error(err))
		return
	}
	h.Logger.Info("login summary dismissed", zap.Int("user_id", userID), zap.Int("notifications", len(ids)))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		http.Error(w, "Database not reachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
