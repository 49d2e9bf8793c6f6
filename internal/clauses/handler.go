package clauses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the clauses repo.
type Handler struct {
	Repo    Repo
	DocRepo documents.Repo
}

func NewHandler(repo Repo, docRepo documents.Repo) *Handler {
	return &Handler{Repo: repo, DocRepo: docRepo}
}

// RegisterRoutes attaches clause and risk routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/clauses", h.create)
	rg.GET("/documents/:id/clauses", h.list)
	rg.GET("/clauses/:id", h.get)
	rg.DELETE("/clauses/:id", h.delete)
	rg.POST("/clauses/:id/risks", h.createRisk)
	rg.GET("/clauses/:id/risks", h.listRisks)
	rg.DELETE("/risks/:id", h.deleteRisk)
}

type createClauseRequest struct {
	ClauseType string         `json:"clause_type"`
	Text       string         `json:"text"`
	StartPos   *int           `json:"start_pos"`
	EndPos     *int           `json:"end_pos"`
	Confidence *int           `json:"confidence"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *Handler) create(c *gin.Context) {
	doc, err := h.ownedDocument(c, c.Param("id"))
	if err != nil {
		respond.AppError(c, err)
		return
	}

	var req createClauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}

	clause, err := h.Repo.Create(c.Request.Context(), Clause{
		DocumentID: doc.ID,
		ClauseType: req.ClauseType,
		Text:       req.Text,
		StartPos:   req.StartPos,
		EndPos:     req.EndPos,
		Confidence: req.Confidence,
		Metadata:   req.Metadata,
	})
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, clause)
}

func (h *Handler) list(c *gin.Context) {
	doc, err := h.ownedDocument(c, c.Param("id"))
	if err != nil {
		respond.AppError(c, err)
		return
	}

	out, err := h.Repo.ListByDocument(c.Request.Context(), doc.ID)
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to list clauses", map[string]any{"document_id": doc.ID}))
		return
	}
	if out == nil {
		out = []Clause{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"clauses": out})
}

func (h *Handler) get(c *gin.Context) {
	clause, err := h.ownedClause(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, clause)
}

// delete removes a single clause; the schema removes its risks with it.
func (h *Handler) delete(c *gin.Context) {
	clause, err := h.ownedClause(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), clause.ID); err != nil {
		respond.AppError(c, apperrors.Database("failed to delete clause", map[string]any{"clause_id": clause.ID}))
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": clause.ID})
}

type createRiskRequest struct {
	RiskType    string         `json:"risk_type"`
	Description string         `json:"description"`
	Severity    string         `json:"severity"`
	Impact      string         `json:"impact"`
	Mitigation  string         `json:"mitigation"`
	Metadata    map[string]any `json:"metadata"`
}

func (h *Handler) createRisk(c *gin.Context) {
	clause, err := h.ownedClause(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	var req createRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.AppError(c, apperrors.Validation("invalid request body", nil))
		return
	}

	risk, err := h.Repo.CreateRisk(c.Request.Context(), Risk{
		ClauseID:    clause.ID,
		RiskType:    req.RiskType,
		Description: req.Description,
		Severity:    Severity(req.Severity),
		Impact:      req.Impact,
		Mitigation:  req.Mitigation,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, risk)
}

func (h *Handler) listRisks(c *gin.Context) {
	clause, err := h.ownedClause(c)
	if err != nil {
		respond.AppError(c, err)
		return
	}

	out, err := h.Repo.ListRisks(c.Request.Context(), clause.ID)
	if err != nil {
		respond.AppError(c, apperrors.Database("failed to list risks", map[string]any{"clause_id": clause.ID}))
		return
	}
	if out == nil {
		out = []Risk{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"risks": out})
}

func (h *Handler) deleteRisk(c *gin.Context) {
	riskID := c.Param("id")
	if err := h.Repo.DeleteRisk(c.Request.Context(), riskID); err != nil {
		if errors.Is(err, ErrRiskNotFound) {
			respond.AppError(c, apperrors.NotFound("risk not found", map[string]any{"risk_id": riskID}))
			return
		}
		respond.AppError(c, apperrors.Database("failed to delete risk", map[string]any{"risk_id": riskID}))
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": riskID})
}

func (h *Handler) ownedClause(c *gin.Context) (Clause, error) {
	clauseID := c.Param("id")
	clause, err := h.Repo.GetByID(c.Request.Context(), clauseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Clause{}, apperrors.NotFound("clause not found", map[string]any{"clause_id": clauseID})
		}
		return Clause{}, apperrors.Database("failed to load clause", map[string]any{"clause_id": clauseID})
	}
	if _, err := h.ownedDocument(c, clause.DocumentID); err != nil {
		return Clause{}, err
	}
	return clause, nil
}

func (h *Handler) ownedDocument(c *gin.Context, documentID string) (documents.Document, error) {
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
