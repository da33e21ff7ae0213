package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suneung/mocktrack-backend/internal/model"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
	"github.com/suneung/mocktrack-backend/internal/validator"
)

// GateHandler handles the shared-password verification step.
type GateHandler struct {
	gateService *service.GateService
}

// NewGateHandler creates a new GateHandler.
func NewGateHandler(gateService *service.GateService) *GateHandler {
	return &GateHandler{gateService: gateService}
}

// Verify godoc
// POST /api/v1/gate/verify
// Checks the shared password and issues a session gate token. There is
// no lockout and no rate limiting; a mismatch just reports the error.
func (h *GateHandler) Verify(c *gin.Context) {
	var req model.VerifyGateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.gateService.VerifyPassword(req.Password); err != nil {
		if errors.Is(err, service.ErrGateNotConfigured) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidGatePassword)
		return
	}

	token, err := h.gateService.IssueToken()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.VerifyGateResponse{
		Token:     token,
		ExpiresIn: int64(h.gateService.TokenExpiry().Seconds()),
	})
}
