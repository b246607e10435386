package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-notifier/cache"
	"task-notifier/middleware"
	handler "task-notifier/system"
	"task-notifier/ws"
)

type RouterConfig struct {
	Handler     *handler.Handler
	Hub         *ws.Hub
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	RateLimit   int
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler
	r := mux.NewRouter()
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	//  Public routes
	if cfg.Hub != nil {
		r.HandleFunc("/ws", cfg.Hub.ServeWS)
	}
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/register/thank-you", h.ThankYou).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/verify-email/error", h.VerifyEmailError).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	//  Protected routes
	limited := func(s *mux.Router) {
		s.Use(middleware.JWTMiddleware)
		if cfg.RateLimiter != nil {
			s.Use(cfg.RateLimiter.Middleware)
		}
	}

	s := r.PathPrefix("/tasks").Subrouter()
	limited(s)
	s.HandleFunc("", h.GetAllTasks).Methods("GET")
	s.HandleFunc("/{id:[0-9]+}", h.GetTask).Methods("GET")
	s.HandleFunc("", h.CreateTask).Methods("POST")
	s.HandleFunc("/{id:[0-9]+}", h.UpdateTask).Methods("PUT")
	s.HandleFunc("/{id:[0-9]+}", h.DeleteTask).Methods("DELETE")

	n := r.PathPrefix("/notifications").Subrouter()
	limited(n)
	n.HandleFunc("", h.GetNotifications).Methods("GET")
	n.HandleFunc("/read", h.MarkNotificationsRead).Methods("POST")
	n.HandleFunc("/login-summary", h.GetLoginSummary).Methods("GET")
	n.HandleFunc("/login-summary/page", h.LoginSummaryPage).Methods("GET")
	n.HandleFunc("/login-summary/dismiss", h.DismissLoginSummary).Methods("POST")

	a := r.PathPrefix("/announcement").Subrouter()
	a.Use(middleware.JWTMiddleware)
	a.HandleFunc("", h.GetAnnouncement).Methods("GET")
	a.HandleFunc("/dismiss", h.DismissAnnouncement).Methods("POST")

	rl := r.PathPrefix("/rate-limit").Subrouter()
	rl.Use(middleware.JWTMiddleware)
	rl.HandleFunc("", handler.RateLimitStatusHandler(cache.RedisClient, cfg.RateLimit)).Methods("GET")

	return r
}
