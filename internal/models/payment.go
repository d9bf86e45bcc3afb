package models

import (
	"time"
)

// PaymentRecord is one rent payment against an active lease.
type PaymentRecord struct {
	BaseModel
	TenantID   uint       `json:"tenant_id" gorm:"not null;index"`
	PropertyID uint       `json:"property_id" gorm:"not null;index"`
	LandlordID uint       `json:"landlord_id" gorm:"not null;index"`
	Amount     float64    `json:"amount" gorm:"not null"`
	DueDate    time.Time  `json:"due_date" gorm:"not null;index"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Method     string     `json:"method,omitempty" gorm:"size:30"` // card/bank_transfer/cash
	Status     string     `json:"status" gorm:"size:20;default:'Pending';index"`
	Note       string     `json:"note,omitempty" gorm:"size:500"`

	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

// Payment status constants
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusOverdue = "Overdue"
)

// MarkPaid records a successful payment.
func (p *PaymentRecord) MarkPaid(method string) {
	now := time.Now()
	p.Status = PaymentStatusPaid
	p.PaidAt = &now
	p.Method = method
}

// IsOverdue reports whether an unpaid record is past due.
func (p *PaymentRecord) IsOverdue() bool {
	return p.Status == PaymentStatusPending && time.Now().After(p.DueDate)
}
