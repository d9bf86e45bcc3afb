package services

import (
	"encoding/json"
	"errors"
	"os"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PropertyService covers landlord-scoped property CRUD and public browsing.
type PropertyService struct {
	db *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

// PropertyRequestBody carries property create/update fields.
type PropertyRequestBody struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Address     string   `json:"address" binding:"required,max=300"`
	City        string   `json:"city" binding:"max=100"`
	State       string   `json:"state" binding:"max=100"`
	ZipCode     string   `json:"zip_code" binding:"max=20"`
	Rent        float64  `json:"rent" binding:"min=0"`
	Deposit     float64  `json:"deposit" binding:"min=0"`
	Type        string   `json:"type" binding:"required"`
	Bedrooms    int      `json:"bedrooms" binding:"min=0"`
	Bathrooms   int      `json:"bathrooms" binding:"min=0"`
	Area        float64  `json:"area" binding:"min=0"`
	Amenities   []string `json:"amenities,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// PropertyFilter narrows public browsing.
type PropertyFilter struct {
	City          string
	Type          string
	MinRent       float64
	MaxRent       float64
	Bedrooms      int
	AvailableOnly bool
}

// Create lists a new property for the landlord.
func (s *PropertyService) Create(landlordID uint, body *PropertyRequestBody) (*models.Property, error) {
	if !models.ValidPropertyType(body.Type) {
		return nil, apperrors.Validation("unknown property type: %s", body.Type)
	}

	property := &models.Property{
		Title:       body.Title,
		Description: body.Description,
		Address:     body.Address,
		City:        body.City,
		State:       body.State,
		ZipCode:     body.ZipCode,
		Rent:        body.Rent,
		Deposit:     body.Deposit,
		Type:        body.Type,
		Bedrooms:    body.Bedrooms,
		Bathrooms:   body.Bathrooms,
		Area:        body.Area,
		Available:   true,
		Status:      models.PropertyStatusAvailable,
		LandlordID:  landlordID,
	}
	if err := setJSONList(&property.Amenities, body.Amenities); err != nil {
		return nil, apperrors.Internal("encode amenities", err)
	}
	if err := setJSONList(&property.Images, body.Images); err != nil {
		return nil, apperrors.Internal("encode images", err)
	}

	if err := s.db.Create(property).Error; err != nil {
		return nil, apperrors.Internal("create property", err)
	}
	return property, nil
}

// Update edits a property owned by the landlord. Tenant-assignment fields are
// out of reach here; only the request assignment cascade writes them.
func (s *PropertyService) Update(landlordID, propertyID uint, body *PropertyRequestBody) (*models.Property, error) {
	property, err := s.getOwned(landlordID, propertyID)
	if err != nil {
		return nil, err
	}

	if !models.ValidPropertyType(body.Type) {
		return nil, apperrors.Validation("unknown property type: %s", body.Type)
	}

	property.Title = body.Title
	property.Description = body.Description
	property.Address = body.Address
	property.City = body.City
	property.State = body.State
	property.ZipCode = body.ZipCode
	property.Rent = body.Rent
	property.Deposit = body.Deposit
	property.Type = body.Type
	property.Bedrooms = body.Bedrooms
	property.Bathrooms = body.Bathrooms
	property.Area = body.Area
	if err := setJSONList(&property.Amenities, body.Amenities); err != nil {
		return nil, apperrors.Internal("encode amenities", err)
	}
	if err := setJSONList(&property.Images, body.Images); err != nil {
		return nil, apperrors.Internal("encode images", err)
	}

	if err := s.db.Save(property).Error; err != nil {
		return nil, apperrors.Internal("update property", err)
	}
	return property, nil
}

// Delete removes a property and its image files. Refused while the property
// is rented or has an open request referencing it.
func (s *PropertyService) Delete(landlordID, propertyID uint) error {
	property, err := s.getOwned(landlordID, propertyID)
	if err != nil {
		return err
	}

	if property.Status == models.PropertyStatusRented {
		return apperrors.InvalidState("cannot delete a rented property")
	}

	var openCount int64
	s.db.Model(&models.PropertyRequest{}).
		Where("property_id = ? AND status IN ?", propertyID, models.OpenRequestStatuses()).
		Count(&openCount)
	if openCount > 0 {
		return apperrors.Conflict("property has open requests")
	}

	if err := s.db.Delete(property).Error; err != nil {
		return apperrors.Internal("delete property", err)
	}

	// best effort, errors logged only
	removeFiles(decodeJSONList(property.Images))
	return nil
}

// GetByID returns a property with its landlord preloaded.
func (s *PropertyService) GetByID(propertyID uint) (*models.Property, error) {
	var property models.Property
	err := s.db.Preload("Landlord").First(&property, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("property not found")
		}
		return nil, apperrors.Internal("query property", err)
	}
	return &property, nil
}

// List browses properties with filters, newest first.
func (s *PropertyService) List(filter *PropertyFilter, page, pageSize int) ([]*models.Property, int64, error) {
	var properties []*models.Property
	var total int64

	query := s.db.Model(&models.Property{})
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.MinRent > 0 {
		query = query.Where("rent >= ?", filter.MinRent)
	}
	if filter.MaxRent > 0 {
		query = query.Where("rent <= ?", filter.MaxRent)
	}
	if filter.Bedrooms > 0 {
		query = query.Where("bedrooms >= ?", filter.Bedrooms)
	}
	if filter.AvailableOnly {
		query = query.Where("available = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count properties", err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&properties).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list properties", err)
	}
	return properties, total, nil
}

// ListByLandlord returns the landlord's own listings.
func (s *PropertyService) ListByLandlord(landlordID uint, status string, page, pageSize int) ([]*models.Property, int64, error) {
	var properties []*models.Property
	var total int64

	query := s.db.Model(&models.Property{}).Where("landlord_id = ?", landlordID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count properties", err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&properties).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list properties", err)
	}
	return properties, total, nil
}

// getOwned fetches a property scoped to its landlord. Absent and not-owned
// both come back NotFound so ownership probes learn nothing.
func (s *PropertyService) getOwned(landlordID, propertyID uint) (*models.Property, error) {
	var property models.Property
	err := s.db.Where("id = ? AND landlord_id = ?", propertyID, landlordID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("property not found")
		}
		return nil, apperrors.Internal("query property", err)
	}
	return &property, nil
}

// setJSONList stores a string slice as a JSON column value.
func setJSONList(dst *datatypes.JSON, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	*dst = data
	return nil
}

// decodeJSONList reads a JSON column value back into a string slice.
func decodeJSONList(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}

// removeFiles deletes files from disk, logging failures.
func removeFiles(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.GetLogger().Warnf("Failed to remove file %s: %v", path, err)
		}
	}
}
