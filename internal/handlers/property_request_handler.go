package handlers

import (
	"renthub/internal/middleware"
	"renthub/internal/services"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// PropertyRequestHandler serves the request lifecycle endpoints.
type PropertyRequestHandler struct {
	requestService *services.PropertyRequestService
}

func NewPropertyRequestHandler(requestService *services.PropertyRequestService) *PropertyRequestHandler {
	return &PropertyRequestHandler{requestService: requestService}
}

// Create opens a request; tenant only.
func (h *PropertyRequestHandler) Create(c *gin.Context) {
	var body services.CreateRequestBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.requestService.Create(middleware.CurrentUserID(c), &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, request)
}

// GetByID returns one request. Unlike the transition endpoints, a caller who
// is neither party gets an explicit 403 here.
func (h *PropertyRequestHandler) GetByID(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(middleware.CurrentUserID(c), requestID)
	if err != nil {
		if appErr, isApp := apperrors.AsAppError(err); isApp && appErr.Kind == apperrors.KindForbidden {
			response.Forbidden(c, appErr.Message)
			return
		}
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// ListForLandlord returns the landlord's requests with filters.
func (h *PropertyRequestHandler) ListForLandlord(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	requests, total, err := h.requestService.ListByLandlord(
		middleware.CurrentUserID(c), c.Query("status"),
		uint(parseIntQuery(c, "property")), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, requests, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// ListForTenant returns the tenant's requests with filters.
func (h *PropertyRequestHandler) ListForTenant(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	requests, total, err := h.requestService.ListByTenant(
		middleware.CurrentUserID(c), c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, requests, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Respond approves or rejects a pending request; landlord only.
func (h *PropertyRequestHandler) Respond(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.RespondBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.requestService.Respond(middleware.CurrentUserID(c), requestID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// SendAgreement delivers agreement terms; landlord only.
func (h *PropertyRequestHandler) SendAgreement(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.SendAgreementBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.requestService.SendAgreement(middleware.CurrentUserID(c), requestID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// AcceptAgreement records the tenant's acceptance.
func (h *PropertyRequestHandler) AcceptAgreement(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	request, err := h.requestService.AcceptAgreement(middleware.CurrentUserID(c), requestID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// RejectAgreement records the tenant's rejection with an optional reason.
func (h *PropertyRequestHandler) RejectAgreement(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.RejectAgreementBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.requestService.RejectAgreement(middleware.CurrentUserID(c), requestID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// CompleteAssignment finalizes an accepted request; landlord only.
func (h *PropertyRequestHandler) CompleteAssignment(c *gin.Context) {
	requestID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.CompleteAssignmentBody
	if !bindJSON(c, &body) {
		return
	}

	request, err := h.requestService.CompleteAssignment(middleware.CurrentUserID(c), requestID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, request)
}

// Stats aggregates the landlord's requests by status.
func (h *PropertyRequestHandler) Stats(c *gin.Context) {
	stats, err := h.requestService.Stats(middleware.CurrentUserID(c))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, stats)
}
