package handlers

import (
	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves rent payment endpoints.
type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create schedules a payment; landlord only.
func (h *PaymentHandler) Create(c *gin.Context) {
	var body services.CreatePaymentBody
	if !bindJSON(c, &body) {
		return
	}

	payment, err := h.paymentService.Create(middleware.CurrentUserID(c), &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, payment)
}

// Pay settles a pending payment; tenant only.
func (h *PaymentHandler) Pay(c *gin.Context) {
	paymentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.PayBody
	if !bindJSON(c, &body) {
		return
	}

	payment, err := h.paymentService.Pay(middleware.CurrentUserID(c), paymentID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, payment)
}

// List returns the caller's payments, scoped by their role.
func (h *PaymentHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "authentication required")
		return
	}
	params := pagination.ParsePageParams(c)

	payments, total, err := h.paymentService.ListByUser(
		user.ID, user.Role, c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, payments, pagination.NewPageInfo(params.Page, params.PageSize, total))
}
