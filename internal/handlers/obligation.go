package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/services"
)

type ObligationHandler struct {
	obligationService services.ObligationService
	statusService     services.StatusService
}

func NewObligationHandler(obligationService services.ObligationService, statusService services.StatusService) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService, statusService: statusService}
}

type createObligationRequest struct {
	UserID string `json:"user_id"`
	services.CreateObligationInput
}

func (h *ObligationHandler) Create(c *gin.Context) {
	var req createObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	obl, err := h.obligationService.Create(c.Request.Context(), userID, req.CreateObligationInput)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"status": "created", "obligation": obl})
}

func (h *ObligationHandler) List(c *gin.Context) {
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	obls, err := h.obligationService.List(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"obligations": obls, "count": len(obls)})
}

func (h *ObligationHandler) Get(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	obl, err := h.obligationService.Get(c.Request.Context(), oblID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"obligation": obl})
}

type updateStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (h *ObligationHandler) UpdateStatus(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	obl, err := h.statusService.UpdateStatus(c.Request.Context(), oblID, userID, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "updated", "obligation": obl})
}

type reattemptRequest struct {
	UserID      string     `json:"user_id"`
	NewDeadline *time.Time `json:"new_deadline,omitempty"`
	Title       string     `json:"title,omitempty"`
}

func (h *ObligationHandler) Reattempt(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reattemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	obl, err := h.obligationService.Reattempt(c.Request.Context(), oblID, userID, req.NewDeadline, req.Title)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"status": "created", "obligation": obl})
}

func (h *ObligationHandler) History(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	events, err := h.obligationService.History(c.Request.Context(), oblID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": events, "count": len(events)})
}

func (h *ObligationHandler) ListSteps(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	steps, err := h.obligationService.ListSteps(c.Request.Context(), oblID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"steps": steps, "count": len(steps)})
}

type completeStepRequest struct {
	UserID string `json:"user_id"`
}

func (h *ObligationHandler) CompleteStep(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stepID, ok := pathUUID(c, "stepID")
	if !ok {
		return
	}
	var req completeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	step, err := h.obligationService.CompleteStep(c.Request.Context(), oblID, stepID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": string(step.Status), "step": step})
}
