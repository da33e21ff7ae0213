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

// NotificationHandler handles the web-push send endpoint.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Send godoc
// POST /api/v1/notifications/send
// Fire-and-forget web push: one attempt, no retry. Only POST is mounted;
// other methods get the router's 405.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req model.SendNotificationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.notificationService.Send(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrPushNotConfigured) {
			response.Fail(c, http.StatusInternalServerError, response.ErrPushNotConfigured)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrPushSendFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}
