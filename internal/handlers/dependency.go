package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/services"
)

type DependencyHandler struct {
	dependencyService services.DependencyService
	overrideService   services.OverrideService
}

func NewDependencyHandler(dependencyService services.DependencyService, overrideService services.OverrideService) *DependencyHandler {
	return &DependencyHandler{dependencyService: dependencyService, overrideService: overrideService}
}

// Evaluate derives edges from the static map and reports blocked state.
// Safe to call on every obligation-list view.
func (h *DependencyHandler) Evaluate(c *gin.Context) {
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	result, err := h.dependencyService.Evaluate(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

type createDependencyRequest struct {
	UserID                string `json:"user_id"`
	DependsOnObligationID string `json:"depends_on_obligation_id"`
}

func (h *DependencyHandler) CreateDependency(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req createDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	dependsOnID, ok := parseUUIDField(c, req.DependsOnObligationID, "depends_on_obligation_id")
	if !ok {
		return
	}
	dep, err := h.dependencyService.CreateDependency(c.Request.Context(), oblID, userID, dependsOnID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"status": "created", "dependency": dep})
}

type createOverrideRequest struct {
	UserID                 string `json:"user_id"`
	OverriddenDependencyID string `json:"overridden_dependency_id"`
	UserReason             string `json:"user_reason"`
}

func (h *DependencyHandler) CreateOverride(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req createOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, ok := parseUUIDField(c, req.UserID, "user_id")
	if !ok {
		return
	}
	depID, ok := parseUUIDField(c, req.OverriddenDependencyID, "overridden_dependency_id")
	if !ok {
		return
	}
	override, err := h.overrideService.Create(c.Request.Context(), oblID, userID, depID, req.UserReason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"status":   "override_created",
		"override": override,
		"warning":  "this override removes the hard block but does not change the dependency status; the overridden dependency is still tracked",
	})
}

func (h *DependencyHandler) ListOverrides(c *gin.Context) {
	oblID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	overrides, err := h.overrideService.List(c.Request.Context(), oblID, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"overrides": overrides})
}
