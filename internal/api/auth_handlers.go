package api

import (
	"net/http"

	"taskboard/internal/service"
)

const refreshCookie = "refreshToken"

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,min=2"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2"`
	Timezone        *string `json:"timezone"`
	EODReminderTime *string `json:"eodReminderTime" validate:"omitempty,datetime=15:04"`
	WeekendEOD      *bool   `json:"weekendEOD"`
	TelegramChatID  *int64  `json:"telegramChatId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	creds, err := s.authSvc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setRefreshCookie(w, creds.RefreshToken)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "User created successfully",
		"user":        creds.User,
		"accessToken": creds.AccessToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	creds, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setRefreshCookie(w, creds.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Login successful",
		"user":        creds.User,
		"accessToken": creds.AccessToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	creds, err := s.authSvc.Refresh(r.Context(), s.refreshTokenFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setRefreshCookie(w, creds.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":        creds.User,
		"accessToken": creds.AccessToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.authSvc.Logout(r.Context(), s.refreshTokenFrom(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.authSvc.CurrentUser(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeValid(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.authSvc.UpdateProfile(r.Context(), currentUser(r).ID, service.ProfileUpdate{
		Name:            req.Name,
		Timezone:        req.Timezone,
		EODReminderTime: req.EODReminderTime,
		WeekendEOD:      req.WeekendEOD,
		TelegramChatID:  req.TelegramChatID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) refreshTokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(s.cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   refreshCookie,
		Value:  "",
		Path:   "/api/auth",
		MaxAge: -1,
	})
}
