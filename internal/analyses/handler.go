package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses repo.
type Handler struct {
	Repo    Repo
	DocRepo documents.Repo
}

func NewHandler(repo Repo, docRepo documents.Repo) *Handler {
	return &Handler{Repo: repo, DocRepo: docRepo}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyses", h.create)
	rg.GET("/documents/:id/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

type createRequest struct {
	AnalysisType string `json:"analysis_type"`
}

func (h *Handler) create(c *gin.Context) {
	doc, err := h.ownedDocument(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}
	req.AnalysisType = strings.TrimSpace(req.AnalysisType)
	if req.AnalysisType == "" {
		respond.AppError(c, apperrors.Validation("analysis_type is required", nil))
		return
	}

	analysis, err := h.Repo.Create(c.Request.Context(), Analysis{
		DocumentID:   doc.ID,
		AnalysisType: req.AnalysisType,
	})
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to create analysis", map[string]any{"document_id": doc.ID}))
		return
	}
	respond.JSON(c, http.StatusCreated, analysis)
}

func (h *Handler) list(c *gin.Context) {
	doc, err := h.ownedDocument(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	out, err := h.Repo.ListByDocument(c.Request.Context(), doc.ID)
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to list analyses", map[string]any{"document_id": doc.ID}))
		return
	}
	if out == nil {
		out = []Analysis{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": out})
}

func (h *Handler) get(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	analysis, err := h.Repo.GetByID(c.Request.Context(), analysisID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.AppError(c, apperrors.NotFound("analysis not found", map[string]any{"analysis_id": analysisID}))
			return
		}
		respond.AppError(c, apperrors.Database("failed to load analysis", map[string]any{"analysis_id": analysisID}))
		return
	}

	if _, err := h.ownedDocumentByID(c, analysis.DocumentID); err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, analysis)
}

func (h *Handler) ownedDocument(c *gin.Context) (documents.Document, error) {
	return h.ownedDocumentByID(c, c.Param("id"))
}

func (h *Handler) ownedDocumentByID(c *gin.Context, documentID string) (documents.Document, error) {
	userID := middleware.UserIDFromContext(c)
	c.Set("documentId", documentID)

	doc, err := h.DocRepo.GetByID(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, apperrors.NotFound("document not found", map[string]any{"document_id": documentID})
		}
		return documents.Document{}, apperrors.Database("failed to load document", map[string]any{"document_id": documentID})
	}
	if doc.UserID != userID {
		return documents.Document{}, apperrors.Authorization("document belongs to another user", map[string]any{"document_id": documentID})
	}
	return doc, nil
}
