package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The API gateway authenticates callers and forwards user_id; the core
// trusts it and scopes every lookup by it.

func userIDFromQuery(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "user_id is required", Code: "missing_user_id"}})
		return uuid.Nil, false
	}
	return id, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid " + name, Code: "invalid_id"}})
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDField(c *gin.Context, value, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: field + " is required", Code: "invalid_" + field}})
		return uuid.Nil, false
	}
	return id, true
}
