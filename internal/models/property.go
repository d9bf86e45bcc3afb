package models

import (
	"time"

	"gorm.io/datatypes"
)

// Property is a rentable unit owned by a landlord.
type Property struct {
	BaseModel
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description string  `json:"description" gorm:"size:2000"`
	Address     string  `json:"address" gorm:"not null;size:300"`
	City        string  `json:"city" gorm:"size:100;index"`
	State       string  `json:"state" gorm:"size:100"`
	ZipCode     string  `json:"zip_code" gorm:"size:20"`
	Rent        float64 `json:"rent" gorm:"not null"`
	Deposit     float64 `json:"deposit"`
	Type        string  `json:"type" gorm:"size:30;index"` // apartment/house/condo/studio/townhouse
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Area        float64 `json:"area"` // square feet

	Amenities datatypes.JSON `json:"amenities" gorm:"type:json"` // string array
	Images    datatypes.JSON `json:"images" gorm:"type:json"`    // ordered URL array

	// Invariant: Available == true iff Status == Available iff
	// CurrentTenantID == nil. Mutate through MarkRented/MarkAvailable.
	Available       bool       `json:"available" gorm:"default:true;index"`
	Status          string     `json:"status" gorm:"size:20;default:'Available';index"`
	LandlordID      uint       `json:"landlord_id" gorm:"not null;index"`
	CurrentTenantID *uint      `json:"current_tenant_id" gorm:"index"`
	LeaseStartDate  *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate    *time.Time `json:"lease_end_date,omitempty"`

	Landlord      *User `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	CurrentTenant *User `json:"current_tenant,omitempty" gorm:"foreignKey:CurrentTenantID"`
}

func (Property) TableName() string {
	return "properties"
}

// Property status constants
const (
	PropertyStatusAvailable   = "Available"
	PropertyStatusRented      = "Rented"
	PropertyStatusMaintenance = "Maintenance"
)

// Property type constants
const (
	PropertyTypeApartment = "apartment"
	PropertyTypeHouse     = "house"
	PropertyTypeCondo     = "condo"
	PropertyTypeStudio    = "studio"
	PropertyTypeTownhouse = "townhouse"
)

// ValidPropertyType reports whether t is a known property type.
func ValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeCondo,
		PropertyTypeStudio, PropertyTypeTownhouse:
		return true
	}
	return false
}

// MarkRented assigns the property to a tenant with the lease window.
func (p *Property) MarkRented(tenantID uint, leaseStart, leaseEnd *time.Time) {
	p.Available = false
	p.Status = PropertyStatusRented
	p.CurrentTenantID = &tenantID
	p.LeaseStartDate = leaseStart
	p.LeaseEndDate = leaseEnd
}

// MarkAvailable releases the property back onto the market.
func (p *Property) MarkAvailable() {
	p.Available = true
	p.Status = PropertyStatusAvailable
	p.CurrentTenantID = nil
	p.LeaseStartDate = nil
	p.LeaseEndDate = nil
}
