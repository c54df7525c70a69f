package api

import (
	"net/http"
	"time"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	CategoryID  string     `json:"categoryId" validate:"required"`
	Priority    int        `json:"priority" validate:"gte=0,lte=999"`
	Color       string     `json:"color" validate:"omitempty,hexcolor"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       string     `json:"notes"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Priority    *int       `json:"priority" validate:"omitempty,gte=0,lte=999"`
	Color       *string    `json:"color" validate:"omitempty,hexcolor"`
	Completed   *bool      `json:"completed"`
	IsEOD       *bool      `json:"isEOD"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       *string    `json:"notes"`
}

type reorderTasksRequest struct {
	TaskIDs    []string `json:"taskIds" validate:"required,min=1"`
	CategoryID string   `json:"categoryId"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := repository.TaskFilter{CategoryID: r.URL.Query().Get("categoryId")}
	if v := r.URL.Query().Get("isEOD"); v != "" {
		b := v == "true"
		filter.IsEOD = &b
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		b := v == "true"
		filter.Completed = &b
	}

	tasks, err := s.taskSvc.List(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.taskSvc.Create(r.Context(), currentUser(r).ID, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		Color:       req.Color,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"task": task})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskSvc.Get(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.taskSvc.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Color:       req.Color,
		Completed:   req.Completed,
		IsEOD:       req.IsEOD,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.taskSvc.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleToggleComplete(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskSvc.ToggleComplete(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleToggleEOD(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskSvc.ToggleEOD(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req reorderTasksRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.taskSvc.Reorder(r.Context(), currentUser(r).ID, req.TaskIDs, req.CategoryID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tasks reordered successfully"})
}

func (s *Server) handleEODToday(w http.ResponseWriter, r *http.Request) {
	result, err := s.taskSvc.EODToday(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearOverdueEOD(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.taskSvc.ClearOverdueEOD(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Overdue EOD tasks cleared",
		"clearedCount": cleared,
	})
}
