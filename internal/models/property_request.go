package models

import (
	"time"
)

// PropertyRequest tracks one tenant's interest in one property from first
// contact through agreement negotiation to final assignment or rejection.
// Requests are never deleted; they are the audit trail of the negotiation.
type PropertyRequest struct {
	BaseModel
	PropertyID uint   `json:"property_id" gorm:"not null;index"`
	TenantID   uint   `json:"tenant_id" gorm:"not null;index"`
	LandlordID uint   `json:"landlord_id" gorm:"not null;index"`
	Message    string `json:"message" gorm:"size:1000"`
	Status     string `json:"status" gorm:"size:30;not null;default:'Pending';index"`

	SelectedAgreementID  *uint  `json:"selected_agreement_id" gorm:"index"`
	CustomAgreementTerms string `json:"custom_agreement_terms,omitempty" gorm:"type:text"`

	LandlordResponse    string     `json:"landlord_response,omitempty" gorm:"size:1000"`
	ResponseDate        *time.Time `json:"response_date,omitempty"`
	AgreementAcceptedAt *time.Time `json:"agreement_accepted_at,omitempty"`
	AssignedAt          *time.Time `json:"assigned_at,omitempty"`

	// Lease terms fixed at assignment time.
	LeaseStartDate  *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate    *time.Time `json:"lease_end_date,omitempty"`
	RentAmount      *float64   `json:"rent_amount,omitempty"`
	SecurityDeposit *float64   `json:"security_deposit,omitempty"`

	// Set with the Completed status and cleared only after the property and
	// tenant writes are confirmed applied; the scheduler re-drives the
	// cascade for any request still carrying it.
	AssignmentPending bool `json:"-" gorm:"default:false;index"`

	Property          *Property  `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Tenant            *User      `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Landlord          *User      `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	SelectedAgreement *Agreement `json:"selected_agreement,omitempty" gorm:"foreignKey:SelectedAgreementID"`
}

func (PropertyRequest) TableName() string {
	return "property_requests"
}

// Request status constants. The machine:
//
//	Pending -> Approved | Rejected | Agreement_Sent
//	Approved -> Agreement_Sent
//	Agreement_Sent -> Agreement_Accepted | Rejected
//	Agreement_Accepted -> Completed
//
// Rejected and Completed are terminal.
const (
	RequestStatusPending           = "Pending"
	RequestStatusApproved          = "Approved"
	RequestStatusAgreementSent     = "Agreement_Sent"
	RequestStatusAgreementAccepted = "Agreement_Accepted"
	RequestStatusCompleted         = "Completed"
	RequestStatusRejected          = "Rejected"
)

// OpenRequestStatuses are the non-terminal states before agreement
// acceptance; at most one request per (tenant, property) may be in them.
func OpenRequestStatuses() []string {
	return []string{RequestStatusPending, RequestStatusApproved, RequestStatusAgreementSent}
}

// IsOpen reports whether the request still blocks a new one for the same
// tenant and property.
func (r *PropertyRequest) IsOpen() bool {
	switch r.Status {
	case RequestStatusPending, RequestStatusApproved, RequestStatusAgreementSent:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (r *PropertyRequest) IsTerminal() bool {
	return r.Status == RequestStatusRejected || r.Status == RequestStatusCompleted
}

// CanRespond reports whether the landlord may still approve or reject.
func (r *PropertyRequest) CanRespond() bool {
	return r.Status == RequestStatusPending
}

// CanSendAgreement reports whether the landlord may send an agreement.
// Approval may be skipped: an agreement can go straight out on Pending.
func (r *PropertyRequest) CanSendAgreement() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusApproved
}

// CanAcceptAgreement reports whether the tenant may accept or reject the
// delivered agreement.
func (r *PropertyRequest) CanAcceptAgreement() bool {
	return r.Status == RequestStatusAgreementSent
}

// CanComplete reports whether the landlord may finalize the assignment.
func (r *PropertyRequest) CanComplete() bool {
	return r.Status == RequestStatusAgreementAccepted
}

// Approve records the landlord's approval.
func (r *PropertyRequest) Approve(responseNote string) {
	now := time.Now()
	r.Status = RequestStatusApproved
	r.LandlordResponse = responseNote
	r.ResponseDate = &now
}

// Reject records the landlord's rejection.
func (r *PropertyRequest) Reject(responseNote string) {
	now := time.Now()
	r.Status = RequestStatusRejected
	r.LandlordResponse = responseNote
	r.ResponseDate = &now
}

// SendAgreement delivers agreement terms to the tenant.
func (r *PropertyRequest) SendAgreement(agreementID *uint, customTerms string) {
	now := time.Now()
	r.Status = RequestStatusAgreementSent
	r.SelectedAgreementID = agreementID
	r.CustomAgreementTerms = customTerms
	r.ResponseDate = &now
}

// AcceptAgreement records the tenant's acceptance.
func (r *PropertyRequest) AcceptAgreement() {
	now := time.Now()
	r.Status = RequestStatusAgreementAccepted
	r.AgreementAcceptedAt = &now
}

// RejectAgreement records the tenant's rejection of the delivered terms. The
// reason is kept on the response note for the landlord to read.
func (r *PropertyRequest) RejectAgreement(reason string) {
	now := time.Now()
	r.Status = RequestStatusRejected
	if reason != "" {
		r.LandlordResponse = "Agreement rejected by tenant: " + reason
	} else {
		r.LandlordResponse = "Agreement rejected by tenant"
	}
	r.ResponseDate = &now
}

// Complete fixes the lease terms and marks the assignment as pending cascade.
func (r *PropertyRequest) Complete(leaseStart, leaseEnd *time.Time, rentAmount, securityDeposit float64) {
	now := time.Now()
	r.Status = RequestStatusCompleted
	r.AssignedAt = &now
	r.LeaseStartDate = leaseStart
	r.LeaseEndDate = leaseEnd
	r.RentAmount = &rentAmount
	r.SecurityDeposit = &securityDeposit
	r.AssignmentPending = true
}
