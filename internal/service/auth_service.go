package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ywahab/salahtrack/internal/auth"
	"github.com/ywahab/salahtrack/internal/httpapi"
	"github.com/ywahab/salahtrack/internal/middleware"
	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/storage"
)

// AuthService implements the authentication endpoints.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "email, display_name and password are required")
		return
	}

	s.logger.Info("Register request", "email", req.Email)

	user, err := s.authenticator.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			httpapi.Error(c, http.StatusConflict, httpapi.CodeConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, err.Error())
		default:
			httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "registration failed")
		}
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to generate token")
		return
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	httpapi.OK(c, gin.H{"user": toUserView(user), "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "email and password are required")
		return
	}

	user, err := s.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Email)
		httpapi.Error(c, http.StatusUnauthorized, httpapi.CodeUnauthenticated, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to generate token")
		return
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	httpapi.OK(c, gin.H{"user": toUserView(user), "token": token})
}

// Logout is a no-op on the server: sessions are stateless JWTs and the
// client discards the token.
func (s *AuthService) Logout(c *gin.Context) {
	httpapi.OK(c, nil)
}

// Me returns the currently authenticated user.
func (s *AuthService) Me(c *gin.Context) {
	userID := middleware.UserID(c)

	user, err := s.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusNotFound, httpapi.CodeNotFound, "user not found")
			return
		}
		s.logger.Error("Me failed", "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load user")
		return
	}

	httpapi.OK(c, gin.H{"user": toUserView(user)})
}
