package handlers

import (
	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler serves maintenance request endpoints.
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// Create files an issue for the tenant's rented property.
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var body services.CreateMaintenanceBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.maintenanceService.Create(middleware.CurrentUserID(c), &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, request)
}

// UpdateStatus advances an issue; landlord only.
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.UpdateMaintenanceStatusBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.maintenanceService.UpdateStatus(middleware.CurrentUserID(c), requestID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// List returns the caller's issues, scoped by their role.
func (h *MaintenanceHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "authentication required")
		return
	}
	params := pagination.ParsePageParams(c)

	requests, total, err := h.maintenanceService.ListByUser(
		user.ID, user.Role, c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, requests, pagination.NewPageInfo(params.Page, params.PageSize, total))
}
