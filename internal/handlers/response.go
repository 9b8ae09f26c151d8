package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/domain"
)

type APIError struct {
	Message  string           `json:"message"`
	Code     string           `json:"code,omitempty"`
	Blockers []domain.Blocker `json:"blockers,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondDomainError maps the core error taxonomy onto HTTP statuses:
// validation 400, not-found 404, conflict 409, anything else 500.
func RespondDomainError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: ve.Message, Code: ve.Code}})
		return
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, ErrorEnvelope{Error: APIError{Message: nf.Error(), Code: "not_found"}})
		return
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: APIError{Message: ce.Message, Code: ce.Code, Blockers: ce.Blockers}})
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}
