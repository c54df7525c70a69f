package api

import (
	"net/http"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/service"
)

// Server exposes the domain services over REST.
type Server struct {
	cfg         config.Config
	authSvc     *service.AuthService
	categorySvc *service.CategoryService
	taskSvc     *service.TaskService
	subtaskSvc  *service.SubtaskService
	statsSvc    *service.StatsService
}

func NewServer(
	cfg config.Config,
	authSvc *service.AuthService,
	categorySvc *service.CategoryService,
	taskSvc *service.TaskService,
	subtaskSvc *service.SubtaskService,
	statsSvc *service.StatsService,
) *Server {
	return &Server{
		cfg:         cfg,
		authSvc:     authSvc,
		categorySvc: categorySvc,
		taskSvc:     taskSvc,
		subtaskSvc:  subtaskSvc,
		statsSvc:    statsSvc,
	}
}

// Routes builds the full route table. Everything except register, login,
// refresh and the health check sits behind the auth middleware.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/me", s.auth(s.handleMe))
	mux.Handle("PATCH /api/auth/me", s.auth(s.handleUpdateProfile))

	// Categories
	mux.Handle("GET /api/categories", s.auth(s.handleListCategories))
	mux.Handle("POST /api/categories", s.auth(s.handleCreateCategory))
	mux.Handle("PATCH /api/categories/reorder", s.auth(s.handleReorderCategories))
	mux.Handle("PATCH /api/categories/{id}", s.auth(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.auth(s.handleDeleteCategory))

	// Tasks
	mux.Handle("GET /api/tasks", s.auth(s.handleListTasks))
	mux.Handle("POST /api/tasks", s.auth(s.handleCreateTask))
	mux.Handle("PATCH /api/tasks/reorder", s.auth(s.handleReorderTasks))
	mux.Handle("GET /api/tasks/eod/today", s.auth(s.handleEODToday))
	mux.Handle("POST /api/tasks/eod/clear-overdue", s.auth(s.handleClearOverdueEOD))
	mux.Handle("GET /api/tasks/{id}", s.auth(s.handleGetTask))
	mux.Handle("PATCH /api/tasks/{id}", s.auth(s.handleUpdateTask))
	mux.Handle("DELETE /api/tasks/{id}", s.auth(s.handleDeleteTask))
	mux.Handle("PATCH /api/tasks/{id}/complete", s.auth(s.handleToggleComplete))
	mux.Handle("PATCH /api/tasks/{id}/eod", s.auth(s.handleToggleEOD))

	// Subtasks
	mux.Handle("POST /api/tasks/{id}/subtasks", s.auth(s.handleCreateSubtask))
	mux.Handle("PATCH /api/subtasks/{id}", s.auth(s.handleUpdateSubtask))
	mux.Handle("DELETE /api/subtasks/{id}", s.auth(s.handleDeleteSubtask))

	// Stats
	mux.Handle("GET /api/stats/summary", s.auth(s.handleStatsSummary))
	mux.Handle("GET /api/stats/daily", s.auth(s.handleStatsDaily))
	mux.Handle("GET /api/stats/weekly", s.auth(s.handleStatsWeekly))
	mux.Handle("GET /api/stats/monthly", s.auth(s.handleStatsMonthly))
	mux.Handle("GET /api/stats/eod", s.auth(s.handleStatsEOD))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.cfg.Environment,
	})
}
