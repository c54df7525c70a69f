package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/auth"
	"taskboard/internal/httperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// Credentials bundles the token pair issued on register/login/refresh.
type Credentials struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// ProfileUpdate carries a partial profile update; nil fields are untouched.
type ProfileUpdate struct {
	Name            *string
	Timezone        *string
	EODReminderTime *string
	WeekendEOD      *bool
	TelegramChatID  *int64
}

// AuthService owns registration, login, token refresh and sessions.
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	tokens      *auth.TokenManager
	now         func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, sessionRepo: sessionRepo, tokens: tokens, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Credentials, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, httperr.Conflict("User already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := model.User{Email: email, PasswordHash: hash, Name: name, Timezone: "UTC"}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}

	return s.issue(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, httperr.Unauthorized("Invalid credentials")
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.issue(ctx, user)
}

// Refresh validates the refresh token against its session row and rotates
// the session to a fresh token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	if refreshToken == "" {
		return nil, httperr.Unauthorized("Refresh token not provided")
	}
	if _, err := s.tokens.VerifyRefresh(refreshToken); err != nil {
		return nil, httperr.Unauthorized("Invalid refresh token")
	}

	session, err := s.sessionRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}
	if session.RefreshExpiresAt.Before(s.now()) {
		return nil, httperr.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, httperr.Unauthorized("Invalid or expired refresh token")
	}

	access, err := s.tokens.GenerateAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefresh(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.sessionRepo.Rotate(ctx, session.ID, access, refresh,
		now.Add(s.tokens.AccessTTL()), now.Add(s.tokens.RefreshTTL())); err != nil {
		return nil, err
	}

	return &Credentials{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessionRepo.DeleteByRefreshToken(ctx, refreshToken)
}

// VerifyAccess resolves an access token to its user. Used by the API
// middleware on every authenticated request.
func (s *AuthService) VerifyAccess(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, httperr.Unauthorized("Invalid token")
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, httperr.Unauthorized("User not found")
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil {
			return nil, httperr.Invalid("Unknown timezone")
		}
		updates["timezone"] = *update.Timezone
	}
	if update.EODReminderTime != nil {
		updates["eod_reminder_time"] = *update.EODReminderTime
	}
	if update.WeekendEOD != nil {
		updates["weekend_eod"] = *update.WeekendEOD
	}
	if update.TelegramChatID != nil {
		updates["telegram_chat_id"] = *update.TelegramChatID
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.CurrentUser(ctx, userID)
}

// SweepSessions removes sessions whose refresh window has closed.
func (s *AuthService) SweepSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*Credentials, error) {
	access, err := s.tokens.GenerateAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefresh(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := model.Session{
		UserID:           user.ID,
		Token:            access,
		RefreshToken:     refresh,
		ExpiresAt:        now.Add(s.tokens.AccessTTL()),
		RefreshExpiresAt: now.Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		return nil, err
	}

	return &Credentials{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
