package handlers

import (
	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the persisted notification feed.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, optionally unread only.
func (h *NotificationHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.ListByUser(
		middleware.CurrentUserID(c), unreadOnly, params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, notifications, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.notificationService.MarkRead(middleware.CurrentUserID(c), notificationID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithMessage(c, "notification marked read", nil)
}
