package services

import (
	"errors"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"

	"gorm.io/gorm"
)

// MaintenanceService tracks tenant-reported issues on rented properties.
type MaintenanceService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewMaintenanceService(db *gorm.DB, notifier *NotificationService) *MaintenanceService {
	return &MaintenanceService{db: db, notifier: notifier}
}

// CreateMaintenanceBody reports an issue.
type CreateMaintenanceBody struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=Low Medium High"`
}

// UpdateMaintenanceStatusBody moves an issue along its lifecycle.
type UpdateMaintenanceStatusBody struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=1000"`
}

// Create files an issue for the tenant's rented property.
func (s *MaintenanceService) Create(tenantID uint, body *CreateMaintenanceBody) (*models.MaintenanceRequest, error) {
	var tenant models.User
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		return nil, apperrors.Internal("query tenant", err)
	}
	if tenant.PropertyRentedID == nil {
		return nil, apperrors.InvalidState("no rented property to report an issue for")
	}

	var property models.Property
	if err := s.db.First(&property, *tenant.PropertyRentedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("rented property not found")
		}
		return nil, apperrors.Internal("query property", err)
	}

	priority := body.Priority
	if priority == "" {
		priority = models.MaintenancePriorityMedium
	}

	request := &models.MaintenanceRequest{
		TenantID:    tenantID,
		PropertyID:  property.ID,
		LandlordID:  property.LandlordID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    priority,
		Status:      models.MaintenanceStatusOpen,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, apperrors.Internal("create maintenance request", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(property.LandlordID, models.NotificationMaintenanceUpdate,
			"New maintenance request", body.Title, map[string]interface{}{
				"maintenance_id": request.ID,
				"property_id":    property.ID,
			})
	}
	return request, nil
}

// UpdateStatus moves an issue to a new status; landlord only.
func (s *MaintenanceService) UpdateStatus(landlordID, requestID uint, body *UpdateMaintenanceStatusBody) (*models.MaintenanceRequest, error) {
	if !models.ValidMaintenanceStatus(body.Status) {
		return nil, apperrors.Validation("unknown maintenance status: %s", body.Status)
	}

	var request models.MaintenanceRequest
	err := s.db.Where("id = ? AND landlord_id = ?", requestID, landlordID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("maintenance request not found")
		}
		return nil, apperrors.Internal("query maintenance request", err)
	}
	if request.Status == models.MaintenanceStatusResolved {
		return nil, apperrors.InvalidState("maintenance request is already resolved")
	}

	request.SetStatus(body.Status, body.Note)
	if err := s.db.Save(&request).Error; err != nil {
		return nil, apperrors.Internal("update maintenance request", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(request.TenantID, models.NotificationMaintenanceUpdate,
			"Maintenance update", request.Title+" is now "+request.Status, map[string]interface{}{
				"maintenance_id": request.ID,
				"status":         request.Status,
			})
	}
	return &request, nil
}

// ListByUser returns issues where the user is either party.
func (s *MaintenanceService) ListByUser(userID uint, role, status string, page, pageSize int) ([]*models.MaintenanceRequest, int64, error) {
	var requests []*models.MaintenanceRequest
	var total int64

	query := s.db.Model(&models.MaintenanceRequest{})
	if role == models.RoleLandlord {
		query = query.Where("landlord_id = ?", userID)
	} else {
		query = query.Where("tenant_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count maintenance requests", err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Property").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&requests).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list maintenance requests", err)
	}
	return requests, total, nil
}
