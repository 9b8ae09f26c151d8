package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/services"
)

type ProofHandler struct {
	proofService services.ProofService
}

func NewProofHandler(proofService services.ProofService) *ProofHandler {
	return &ProofHandler{proofService: proofService}
}

type addProofRequest struct {
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	SourceRef string `json:"source_ref"`
}

func (h *ProofHandler) Add(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req addProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	proof, err := h.proofService.Add(c.Request.Context(), oblID, userID, req.Type, req.SourceRef)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"status": "created", "proof": proof})
}

type attachConfirmationEmailRequest struct {
	UserID string                     `json:"user_id"`
	Email  services.ConfirmationEmail `json:"email"`
}

func (h *ProofHandler) AttachConfirmationEmail(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req attachConfirmationEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	proof, err := h.proofService.AttachConfirmationEmail(c.Request.Context(), oblID, userID, req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"status": "attached", "proof": proof})
}

func (h *ProofHandler) List(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	proofs, err := h.proofService.List(c.Request.Context(), oblID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"proofs": proofs, "count": len(proofs)})
}
