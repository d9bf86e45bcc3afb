package handlers

import (
	"fmt"
	"strconv"

	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// PropertyHandler serves property browsing and landlord CRUD.
type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// Create lists a new property for the authenticated landlord.
func (h *PropertyHandler) Create(c *gin.Context) {
	var body services.PropertyRequestBody
	if !bindJSON(c, &body) {
		return
	}

	property, err := h.propertyService.Create(middleware.CurrentUserID(c), &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, property)
}

// List browses properties with optional filters.
func (h *PropertyHandler) List(c *gin.Context) {
	filter := &services.PropertyFilter{
		City:          c.Query("city"),
		Type:          c.Query("type"),
		MinRent:       parseFloatQuery(c, "min_rent"),
		MaxRent:       parseFloatQuery(c, "max_rent"),
		Bedrooms:      parseIntQuery(c, "bedrooms"),
		AvailableOnly: c.Query("available") == "true",
	}
	params := pagination.ParsePageParams(c)

	properties, total, err := h.propertyService.List(filter, params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, properties, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Mine lists the authenticated landlord's own properties.
func (h *PropertyHandler) Mine(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	properties, total, err := h.propertyService.ListByLandlord(
		middleware.CurrentUserID(c), c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, properties, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID returns one property.
func (h *PropertyHandler) GetByID(c *gin.Context) {
	propertyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	property, err := h.propertyService.GetByID(propertyID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, property)
}

// Update edits one of the landlord's properties.
func (h *PropertyHandler) Update(c *gin.Context) {
	propertyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.PropertyRequestBody
	if !bindJSON(c, &body) {
		return
	}

	property, err := h.propertyService.Update(middleware.CurrentUserID(c), propertyID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, property)
}

// Delete removes one of the landlord's properties.
func (h *PropertyHandler) Delete(c *gin.Context) {
	propertyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.propertyService.Delete(middleware.CurrentUserID(c), propertyID); err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithMessage(c, "property deleted", nil)
}

// bindJSON binds the request body, answering 400 itself on failure. Field
// validation failures name the offending field instead of dumping the raw
// binding error.
func bindJSON(c *gin.Context, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		if validationErr, ok := err.(validator.ValidationErrors); ok && len(validationErr) > 0 {
			fe := validationErr[0]
			response.BadRequest(c, fmt.Sprintf("field %s failed validation: %s", fe.Field(), fe.Tag()))
			return false
		}
		response.BadRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}

// parseIDParam reads the :id path parameter, answering 400 itself on failure.
func parseIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func parseFloatQuery(c *gin.Context, key string) float64 {
	value, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return value
}

func parseIntQuery(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
