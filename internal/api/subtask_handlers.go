package api

import (
	"net/http"

	"taskboard/internal/service"
)

type createSubtaskRequest struct {
	Title string `json:"title" validate:"required"`
}

type updateSubtaskRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Completed *bool   `json:"completed"`
	Position  *int    `json:"position" validate:"omitempty,gte=0"`
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req createSubtaskRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	subtask, err := s.subtaskSvc.Create(r.Context(), currentUser(r).ID, r.PathValue("id"), req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"subtask": subtask})
}

func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	var req updateSubtaskRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	subtask, err := s.subtaskSvc.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), service.SubtaskUpdate{
		Title:     req.Title,
		Completed: req.Completed,
		Position:  req.Position,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subtask": subtask})
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := s.subtaskSvc.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subtask deleted successfully"})
}
