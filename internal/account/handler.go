package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/account", h.deleteAccount)
	rg.DELETE("/documents/:id/full", h.deleteDocument)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.AppError(c, apperrors.Authentication("login required", nil))
		return
	}

	result, err := h.Svc.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) deleteDocument(c *gin.Context) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.AppError(c, apperrors.Authentication("login required", nil))
		return
	}

	documentID := c.Param("id")
	if _, err := h.Svc.RequireDocumentOwner(c.Request.Context(), documentID, userID); err != nil {
		respond.AppError(c, err)
		return
	}

	result, err := h.Svc.DeleteDocument(c.Request.Context(), documentID)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
