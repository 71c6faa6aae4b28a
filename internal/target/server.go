package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the demo target: the task CRUD API plus the CPU burner the
// autoscaler reacts to.
type Server struct {
	store TaskStore
	log   *zap.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewServer(store TaskStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		store:    store,
		log:      log,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration",
		}),
	}
	reg.MustRegister(s.requests, s.duration)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{id}", s.handleGetTask)
		r.Put("/tasks/{id}", s.handleUpdateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Post("/cpu-intensive", s.handleCPUIntensive)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	return r
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.duration.Observe(time.Since(start).Seconds())
		s.requests.WithLabelValues(
			r.Method,
			r.URL.Path,
			strconv.Itoa(ww.Status()),
		).Inc()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")

	limit := 100
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = n
	}

	tasks, err := s.store.List(r.Context(), status, limit, offset)
	if err != nil {
		s.log.Error("list tasks failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tasks":  tasks,
		"count":  len(tasks),
		"limit":  limit,
		"offset": offset,
	})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Status == "" {
		req.Status = DefaultStatus
	}

	task, err := s.store.Create(r.Context(), req.Title, req.Description, req.Status)
	if err != nil {
		s.log.Error("create task failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	s.log.Info("created task", zap.Int("id", task.ID))
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := s.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.log.Error("get task failed", zap.Int("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var upd TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	if upd.Empty() {
		respondError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	task, err := s.store.Update(r.Context(), id, upd)
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.log.Error("update task failed", zap.Int("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}

	s.log.Info("updated task", zap.Int("id", id))
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.log.Error("delete task failed", zap.Int("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	s.log.Info("deleted task", zap.Int("id", id))
	w.WriteHeader(http.StatusNoContent)
}

type cpuIntensiveRequest struct {
	Iterations int `json:"iterations"`
}

func (s *Server) handleCPUIntensive(w http.ResponseWriter, r *http.Request) {
	// An absent body means "use the defaults".
	req := cpuIntensiveRequest{Iterations: 100000}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	var result uint64
	for i := 0; i < req.Iterations; i++ {
		result += uint64(i) * uint64(i)
	}
	elapsed := time.Since(start)

	respondJSON(w, http.StatusOK, map[string]any{
		"result":           result,
		"iterations":       req.Iterations,
		"duration_seconds": elapsed.Seconds(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

func taskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

// ListenAndServe runs the target service until the listener fails.
func ListenAndServe(cfg Config, store TaskStore, log *zap.Logger) error {
	s := NewServer(store, log)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("target service listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}
