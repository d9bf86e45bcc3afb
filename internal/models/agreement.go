package models

import (
	"time"
)

// Agreement is a landlord-authored lease-terms document, optionally tied to a
// specific property and tenant, reusable across property requests.
type Agreement struct {
	BaseModel
	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"size:1000"`
	Terms       string `json:"terms" gorm:"not null;type:text"`
	LandlordID  uint   `json:"landlord_id" gorm:"not null;index"`
	PropertyID  *uint  `json:"property_id" gorm:"index"`
	TenantID    *uint  `json:"tenant_id" gorm:"index"`
	Status      string `json:"status" gorm:"size:20;default:'Draft';index"`

	SignedAt  *time.Time `json:"signed_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Documents []AgreementDocument `json:"documents,omitempty" gorm:"foreignKey:AgreementID;constraint:OnDelete:CASCADE"`

	Landlord *User     `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (Agreement) TableName() string {
	return "agreements"
}

// AgreementDocument describes one uploaded file attached to an agreement.
type AgreementDocument struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	AgreementID  uint      `json:"agreement_id" gorm:"not null;index"`
	Filename     string    `json:"filename" gorm:"not null;size:255"` // stored name
	OriginalName string    `json:"original_name" gorm:"not null;size:255"`
	Path         string    `json:"path" gorm:"not null;size:500"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type" gorm:"size:100"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func (AgreementDocument) TableName() string {
	return "agreement_documents"
}

// Agreement status constants
const (
	AgreementStatusDraft      = "Draft"
	AgreementStatusActive     = "Active"
	AgreementStatusExpired    = "Expired"
	AgreementStatusTerminated = "Terminated"
)

// Editable reports whether the agreement may still be modified.
func (a *Agreement) Editable() bool {
	return a.Status == AgreementStatusDraft || a.Status == AgreementStatusActive
}

// MarkExpired transitions an active agreement past its expiry.
func (a *Agreement) MarkExpired() {
	a.Status = AgreementStatusExpired
}
