package models

import (
	"gorm.io/datatypes"
)

// Notification is a persisted workflow event addressed to one user. Live
// delivery goes through the Redis queue; this row is the durable copy.
type Notification struct {
	BaseModel
	UserID  uint           `json:"user_id" gorm:"not null;index"`
	Kind    string         `json:"kind" gorm:"size:50;not null;index"`
	Title   string         `json:"title" gorm:"size:200;not null"`
	Message string         `json:"message" gorm:"size:1000"`
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:json"`
	Read    bool           `json:"read" gorm:"default:false;index"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Notification kind constants, one per workflow event.
const (
	NotificationRequestCreated    = "request_created"
	NotificationRequestApproved   = "request_approved"
	NotificationRequestRejected   = "request_rejected"
	NotificationAgreementSent     = "agreement_sent"
	NotificationAgreementAccepted = "agreement_accepted"
	NotificationAgreementRejected = "agreement_rejected"
	NotificationAssignmentDone    = "assignment_completed"
	NotificationMaintenanceUpdate = "maintenance_update"
	NotificationPaymentReceived   = "payment_received"
)
