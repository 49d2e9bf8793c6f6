package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/auth"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
	"contractai-backend/internal/shared/telemetry"
)

// Handler wires registration, login and profile routes.
type Handler struct {
	Repo   Repo
	Tokens *auth.Tokens
}

func NewHandler(repo Repo, tokens *auth.Tokens) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

// RegisterPublicRoutes attaches routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes attaches routes behind the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Company  string `json:"company"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respond.AppError(c, apperrors.Validation("a valid email is required", nil))
		return
	}
	if len(req.Password) < 8 {
		respond.AppError(c, apperrors.Validation("password must be at least 8 characters", nil))
		return
	}

	if _, err := h.Repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		respond.AppError(c, apperrors.Validation("email already registered", map[string]any{"email": req.Email}))
		return
	} else if !errors.Is(err, ErrNotFound) {
		respond.AppError(c, apperrors.Database("failed to check email", nil))
		return
	}

	user := User{
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Company:  strings.TrimSpace(req.Company),
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		respond.AppError(c, apperrors.New("failed to hash password", http.StatusInternalServerError, nil))
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), user)
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to create user", nil))
		return
	}

	telemetry.Info("user.registered", map[string]any{"user_id": created.ID})
	respond.JSON(c, http.StatusCreated, created)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.AppError(c, apperrors.Authentication("invalid email or password", nil))
			return
		}
		respond.AppError(c, apperrors.Database("failed to load user", nil))
		return
	}
	if !user.IsActive || !user.CheckPassword(req.Password) {
		respond.AppError(c, apperrors.Authentication("invalid email or password", nil))
		return
	}

	token, err := h.Tokens.Sign(auth.Claims{Sub: user.ID, Email: user.Email, Name: user.FullName})
	if err != nil {
		respond.AppError(c, apperrors.New("failed to issue token", http.StatusInternalServerError, nil))
		return
	}

	if err := h.Repo.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		telemetry.Warn("user.touch_last_login", map[string]any{"user_id": user.ID, "cause": err.Error()})
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	user, err := h.Repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.AppError(c, apperrors.NotFound("user not found", map[string]any{"user_id": userID}))
			return
		}
		respond.AppError(c, apperrors.Database("failed to load user", nil))
		return
	}
	respond.JSON(c, http.StatusOK, user)
}
