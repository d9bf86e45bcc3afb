package models

import (
	"time"
)

// MaintenanceRequest is a tenant-reported issue on a rented property.
type MaintenanceRequest struct {
	BaseModel
	TenantID    uint       `json:"tenant_id" gorm:"not null;index"`
	PropertyID  uint       `json:"property_id" gorm:"not null;index"`
	LandlordID  uint       `json:"landlord_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description string     `json:"description" gorm:"size:2000"`
	Priority    string     `json:"priority" gorm:"size:20;default:'Medium'"` // Low/Medium/High
	Status      string     `json:"status" gorm:"size:20;default:'Open';index"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	LandlordNote string    `json:"landlord_note,omitempty" gorm:"size:1000"`

	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// Maintenance status constants
const (
	MaintenanceStatusOpen       = "Open"
	MaintenanceStatusInProgress = "InProgress"
	MaintenanceStatusResolved   = "Resolved"
)

// Maintenance priority constants
const (
	MaintenancePriorityLow    = "Low"
	MaintenancePriorityMedium = "Medium"
	MaintenancePriorityHigh   = "High"
)

// ValidMaintenanceStatus reports whether s is a known status.
func ValidMaintenanceStatus(s string) bool {
	switch s {
	case MaintenanceStatusOpen, MaintenanceStatusInProgress, MaintenanceStatusResolved:
		return true
	}
	return false
}

// SetStatus moves the request to the given status, stamping resolution time.
func (m *MaintenanceRequest) SetStatus(status, note string) {
	m.Status = status
	if note != "" {
		m.LandlordNote = note
	}
	if status == MaintenanceStatusResolved {
		now := time.Now()
		m.ResolvedAt = &now
	}
}
