package services

import (
	"errors"
	"time"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"

	"gorm.io/gorm"
)

// AgreementService covers landlord-scoped agreement CRUD and the attached
// document descriptors.
type AgreementService struct {
	db          *gorm.DB
	userService *UserService
}

func NewAgreementService(db *gorm.DB) *AgreementService {
	return &AgreementService{
		db:          db,
		userService: NewUserService(db),
	}
}

// AgreementRequestBody carries agreement create/update fields.
type AgreementRequestBody struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=1000"`
	Terms       string     `json:"terms" binding:"required"`
	PropertyID  *uint      `json:"property_id,omitempty"`
	TenantID    *uint      `json:"tenant_id,omitempty"`
	Status      string     `json:"status,omitempty" binding:"omitempty,oneof=Draft Active Expired Terminated"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// DocumentDescriptor describes one stored upload.
type DocumentDescriptor struct {
	Filename     string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

// Create authors a new agreement for the landlord. Referenced property must
// be the landlord's own; a referenced tenant must hold the tenant role.
func (s *AgreementService) Create(landlordID uint, body *AgreementRequestBody) (*models.Agreement, error) {
	if err := s.validateRefs(landlordID, body); err != nil {
		return nil, err
	}

	status := body.Status
	if status == "" {
		status = models.AgreementStatusDraft
	}

	agreement := &models.Agreement{
		Title:       body.Title,
		Description: body.Description,
		Terms:       body.Terms,
		LandlordID:  landlordID,
		PropertyID:  body.PropertyID,
		TenantID:    body.TenantID,
		Status:      status,
		SignedAt:    body.SignedAt,
		ExpiresAt:   body.ExpiresAt,
	}
	if err := s.db.Create(agreement).Error; err != nil {
		return nil, apperrors.Internal("create agreement", err)
	}
	return agreement, nil
}

// Update edits an agreement still in an editable status.
func (s *AgreementService) Update(landlordID, agreementID uint, body *AgreementRequestBody) (*models.Agreement, error) {
	agreement, err := s.getOwned(landlordID, agreementID)
	if err != nil {
		return nil, err
	}
	if !agreement.Editable() {
		return nil, apperrors.InvalidState("agreement in status %s cannot be edited", agreement.Status)
	}
	if err := s.validateRefs(landlordID, body); err != nil {
		return nil, err
	}

	agreement.Title = body.Title
	agreement.Description = body.Description
	agreement.Terms = body.Terms
	agreement.PropertyID = body.PropertyID
	agreement.TenantID = body.TenantID
	if body.Status != "" {
		agreement.Status = body.Status
	}
	agreement.SignedAt = body.SignedAt
	agreement.ExpiresAt = body.ExpiresAt

	if err := s.db.Save(agreement).Error; err != nil {
		return nil, apperrors.Internal("update agreement", err)
	}
	return agreement, nil
}

// Delete removes an agreement together with its document files.
func (s *AgreementService) Delete(landlordID, agreementID uint) error {
	agreement, err := s.getOwned(landlordID, agreementID)
	if err != nil {
		return err
	}

	var documents []models.AgreementDocument
	s.db.Where("agreement_id = ?", agreementID).Find(&documents)

	if err := s.db.Select("Documents").Delete(agreement).Error; err != nil {
		return apperrors.Internal("delete agreement", err)
	}

	paths := make([]string, 0, len(documents))
	for _, doc := range documents {
		paths = append(paths, doc.Path)
	}
	removeFiles(paths)
	return nil
}

// GetByID returns one of the landlord's agreements with documents.
func (s *AgreementService) GetByID(landlordID, agreementID uint) (*models.Agreement, error) {
	var agreement models.Agreement
	err := s.db.Preload("Documents").Preload("Property").Preload("Tenant").
		Where("id = ? AND landlord_id = ?", agreementID, landlordID).
		First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("agreement not found")
		}
		return nil, apperrors.Internal("query agreement", err)
	}
	return &agreement, nil
}

// ListByLandlord returns the landlord's agreements, newest first.
func (s *AgreementService) ListByLandlord(landlordID uint, status string, page, pageSize int) ([]*models.Agreement, int64, error) {
	var agreements []*models.Agreement
	var total int64

	query := s.db.Model(&models.Agreement{}).Where("landlord_id = ?", landlordID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count agreements", err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Documents").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&agreements).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list agreements", err)
	}
	return agreements, total, nil
}

// AddDocuments appends uploaded document descriptors. Attachment is allowed
// in any status; only term edits are status-gated.
func (s *AgreementService) AddDocuments(landlordID, agreementID uint, descriptors []DocumentDescriptor) (*models.Agreement, error) {
	agreement, err := s.getOwned(landlordID, agreementID)
	if err != nil {
		return nil, err
	}

	for _, d := range descriptors {
		doc := models.AgreementDocument{
			AgreementID:  agreement.ID,
			Filename:     d.Filename,
			OriginalName: d.OriginalName,
			Path:         d.Path,
			Size:         d.Size,
			MimeType:     d.MimeType,
			UploadedAt:   time.Now(),
		}
		if err := s.db.Create(&doc).Error; err != nil {
			return nil, apperrors.Internal("attach document", err)
		}
	}

	return s.GetByID(landlordID, agreementID)
}

// RemoveDocument detaches a document and deletes its backing file.
func (s *AgreementService) RemoveDocument(landlordID, agreementID, documentID uint) error {
	if _, err := s.getOwned(landlordID, agreementID); err != nil {
		return err
	}

	var doc models.AgreementDocument
	err := s.db.Where("id = ? AND agreement_id = ?", documentID, agreementID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("document not found")
		}
		return apperrors.Internal("query document", err)
	}

	if err := s.db.Delete(&doc).Error; err != nil {
		return apperrors.Internal("detach document", err)
	}

	removeFiles([]string{doc.Path})
	return nil
}

// validateRefs enforces the cross-entity invariants: the property belongs to
// the landlord, the tenant reference holds the tenant role.
func (s *AgreementService) validateRefs(landlordID uint, body *AgreementRequestBody) error {
	if body.PropertyID != nil {
		var count int64
		s.db.Model(&models.Property{}).
			Where("id = ? AND landlord_id = ?", *body.PropertyID, landlordID).
			Count(&count)
		if count == 0 {
			return apperrors.Validation("property %d not found or not yours", *body.PropertyID)
		}
	}
	if body.TenantID != nil {
		if _, err := s.userService.RequireRole(*body.TenantID, models.RoleTenant); err != nil {
			return err
		}
	}
	return nil
}

// getOwned fetches an agreement scoped to its landlord.
func (s *AgreementService) getOwned(landlordID, agreementID uint) (*models.Agreement, error) {
	var agreement models.Agreement
	err := s.db.Where("id = ? AND landlord_id = ?", agreementID, landlordID).First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("agreement not found")
		}
		return nil, apperrors.Internal("query agreement", err)
	}
	return &agreement, nil
}
