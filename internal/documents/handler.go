package documents

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
)

const maxUploadSize = 20 << 20 // 20MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id/status", h.transition)
	rg.POST("/documents/:id/extract", h.extract)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.AppError(c, apperrors.Validation("file is required", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.AppError(c, apperrors.Validation("unable to read file", nil))
		return
	}
	defer file.Close()

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	doc, err := h.Svc.Upload(c.Request.Context(), userID, name, fileHeader.Filename, file)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.Repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to list documents", map[string]any{"user_id": userID}))
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.ownedDocument(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) transition(c *gin.Context) {
	doc, err := h.ownedDocument(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}

	if err := h.Svc.Transition(c.Request.Context(), doc.ID, Status(req.Status)); err != nil {
		respond.AppError(c, err)
		return
	}
	updated, err := h.Svc.Get(c.Request.Context(), doc.ID)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, updated)
}

func (h *Handler) extract(c *gin.Context) {
	doc, err := h.ownedDocument(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	if err := h.Svc.ExtractText(c.Request.Context(), doc.ID); err != nil {
		respond.AppError(c, err)
		return
	}
	updated, err := h.Svc.Get(c.Request.Context(), doc.ID)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, updated)
}

func (h *Handler) ownedDocument(c *gin.Context) (Document, error) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, apperrors.Authorization("document belongs to another user", map[string]any{"document_id": documentID})
	}
	return doc, nil
}
