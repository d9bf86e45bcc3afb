package services

import (
	"errors"
	"fmt"
	"time"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PropertyRequestService drives the request lifecycle:
//
//	Pending -> Approved | Rejected | Agreement_Sent
//	Approved -> Agreement_Sent
//	Agreement_Sent -> Agreement_Accepted | Rejected
//	Agreement_Accepted -> Completed
//
// Every transition re-fetches the request scoped to the acting party and
// writes through a status-guarded update, so concurrent transitions lose with
// an invalid-state error instead of overwriting each other.
type PropertyRequestService struct {
	db       *gorm.DB
	log      *logrus.Logger
	notifier *NotificationService
}

func NewPropertyRequestService(db *gorm.DB, notifier *NotificationService) *PropertyRequestService {
	return &PropertyRequestService{
		db:       db,
		log:      logger.GetLogger(),
		notifier: notifier,
	}
}

// CreateRequestBody carries a tenant's initial interest.
type CreateRequestBody struct {
	PropertyID uint   `json:"property_id" binding:"required,min=1"`
	Message    string `json:"message" binding:"max=1000"`
}

// RespondBody carries the landlord's approve/reject decision.
type RespondBody struct {
	Action   string `json:"action" binding:"required"`
	Response string `json:"response" binding:"max=1000"`
}

// SendAgreementBody carries the agreement delivery.
type SendAgreementBody struct {
	AgreementID *uint  `json:"agreement_id,omitempty"`
	CustomTerms string `json:"custom_terms,omitempty"`
}

// RejectAgreementBody carries the tenant's optional rejection reason.
type RejectAgreementBody struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// CompleteAssignmentBody fixes the lease terms for the final assignment.
type CompleteAssignmentBody struct {
	LeaseStartDate  *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate    *time.Time `json:"lease_end_date,omitempty"`
	RentAmount      float64    `json:"rent_amount" binding:"required,gt=0"`
	SecurityDeposit float64    `json:"security_deposit" binding:"required,min=0"`
}

// RequestStats aggregates a landlord's requests by status.
type RequestStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// Create opens a request for an available property. The duplicate check runs
// inside the transaction and the partial unique index over open statuses
// backs it, so two concurrent submissions cannot both win.
func (s *PropertyRequestService) Create(tenantID uint, body *CreateRequestBody) (*models.PropertyRequest, error) {
	var request *models.PropertyRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, body.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("property not found")
			}
			return apperrors.Internal("query property", err)
		}

		if !property.Available {
			return apperrors.Validation("property is not available")
		}
		if property.LandlordID == tenantID {
			return apperrors.Validation("cannot request your own property")
		}

		var openCount int64
		tx.Model(&models.PropertyRequest{}).
			Where("tenant_id = ? AND property_id = ? AND status IN ?",
				tenantID, body.PropertyID, models.OpenRequestStatuses()).
			Count(&openCount)
		if openCount > 0 {
			return apperrors.Conflict("an open request for this property already exists")
		}

		request = &models.PropertyRequest{
			PropertyID: property.ID,
			TenantID:   tenantID,
			LandlordID: property.LandlordID,
			Message:    body.Message,
			Status:     models.RequestStatusPending,
		}
		if err := tx.Create(request).Error; err != nil {
			// the unique index catches the race the count check cannot
			return apperrors.Conflict("an open request for this property already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(request.LandlordID, models.NotificationRequestCreated,
		"New property request",
		"A tenant is interested in one of your properties", request)

	return s.reload(request.ID)
}

// GetByID returns a request visible only to its tenant or landlord.
func (s *PropertyRequestService) GetByID(callerID, requestID uint) (*models.PropertyRequest, error) {
	request, err := s.reload(requestID)
	if err != nil {
		return nil, err
	}
	if request.TenantID != callerID && request.LandlordID != callerID {
		return nil, apperrors.Forbidden("not a party to this request")
	}
	return request, nil
}

// Respond records the landlord's approval or rejection of a pending request.
func (s *PropertyRequestService) Respond(landlordID, requestID uint, body *RespondBody) (*models.PropertyRequest, error) {
	if body.Action != "approve" && body.Action != "reject" {
		return nil, apperrors.Validation("action must be approve or reject")
	}

	request, err := s.getOwnedByLandlord(landlordID, requestID)
	if err != nil {
		return nil, err
	}
	if !request.CanRespond() {
		return nil, apperrors.InvalidState("request in status %s cannot be responded to", request.Status)
	}

	if body.Action == "approve" {
		request.Approve(body.Response)
	} else {
		request.Reject(body.Response)
	}

	err = s.transition(requestID, []string{models.RequestStatusPending}, map[string]interface{}{
		"status":            request.Status,
		"landlord_response": request.LandlordResponse,
		"response_date":     request.ResponseDate,
	})
	if err != nil {
		return nil, err
	}

	kind := models.NotificationRequestApproved
	title := "Request approved"
	if request.Status == models.RequestStatusRejected {
		kind = models.NotificationRequestRejected
		title = "Request rejected"
	}
	s.notify(request.TenantID, kind, title, request.LandlordResponse, request)

	return s.reload(requestID)
}

// SendAgreement delivers agreement terms to the tenant. The landlord may skip
// the explicit approval step. A referenced agreement must belong to the same
// landlord — checked before the status guard, so a foreign agreement id is a
// validation error no matter the request's state.
func (s *PropertyRequestService) SendAgreement(landlordID, requestID uint, body *SendAgreementBody) (*models.PropertyRequest, error) {
	request, err := s.getOwnedByLandlord(landlordID, requestID)
	if err != nil {
		return nil, err
	}

	if body.AgreementID != nil {
		if err := s.validateSelectedAgreement(landlordID, *body.AgreementID, request); err != nil {
			return nil, err
		}
	}

	if !request.CanSendAgreement() {
		return nil, apperrors.InvalidState("request in status %s cannot receive an agreement", request.Status)
	}

	request.SendAgreement(body.AgreementID, body.CustomTerms)

	err = s.transition(requestID,
		[]string{models.RequestStatusPending, models.RequestStatusApproved},
		map[string]interface{}{
			"status":                 request.Status,
			"selected_agreement_id":  request.SelectedAgreementID,
			"custom_agreement_terms": request.CustomAgreementTerms,
			"response_date":          request.ResponseDate,
		})
	if err != nil {
		return nil, err
	}

	s.notify(request.TenantID, models.NotificationAgreementSent,
		"Agreement received", "The landlord sent you a lease agreement", request)

	return s.reload(requestID)
}

// AcceptAgreement records the tenant's acceptance of the delivered terms.
func (s *PropertyRequestService) AcceptAgreement(tenantID, requestID uint) (*models.PropertyRequest, error) {
	request, err := s.getOwnedByTenant(tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if !request.CanAcceptAgreement() {
		return nil, apperrors.InvalidState("request in status %s has no agreement to accept", request.Status)
	}

	request.AcceptAgreement()

	err = s.transition(requestID, []string{models.RequestStatusAgreementSent}, map[string]interface{}{
		"status":                request.Status,
		"agreement_accepted_at": request.AgreementAcceptedAt,
	})
	if err != nil {
		return nil, err
	}

	s.notify(request.LandlordID, models.NotificationAgreementAccepted,
		"Agreement accepted", "The tenant accepted your agreement", request)

	return s.reload(requestID)
}

// RejectAgreement records the tenant's rejection of the delivered terms. The
// property is untouched; it stays on the market.
func (s *PropertyRequestService) RejectAgreement(tenantID, requestID uint, body *RejectAgreementBody) (*models.PropertyRequest, error) {
	request, err := s.getOwnedByTenant(tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if !request.CanAcceptAgreement() {
		return nil, apperrors.InvalidState("request in status %s has no agreement to reject", request.Status)
	}

	request.RejectAgreement(body.Reason)

	err = s.transition(requestID, []string{models.RequestStatusAgreementSent}, map[string]interface{}{
		"status":            request.Status,
		"landlord_response": request.LandlordResponse,
		"response_date":     request.ResponseDate,
	})
	if err != nil {
		return nil, err
	}

	s.notify(request.LandlordID, models.NotificationAgreementRejected,
		"Agreement rejected", request.LandlordResponse, request)

	return s.reload(requestID)
}

// CompleteAssignment finalizes an accepted request: the request is completed,
// the property marked rented, and the tenant's lease recorded — one
// transaction, so no observer sees a half-applied assignment. The request row
// carries assignment_pending until the property and user writes are in; the
// lease scheduler re-drives any request left with the marker set.
func (s *PropertyRequestService) CompleteAssignment(landlordID, requestID uint, body *CompleteAssignmentBody) (*models.PropertyRequest, error) {
	if body.LeaseStartDate != nil && body.LeaseEndDate != nil && body.LeaseEndDate.Before(*body.LeaseStartDate) {
		return nil, apperrors.Validation("lease end date is before lease start date")
	}

	var request *models.PropertyRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.getOwnedByLandlordTx(tx, landlordID, requestID)
		if err != nil {
			return err
		}
		if !request.CanComplete() {
			return apperrors.InvalidState("request in status %s cannot be completed", request.Status)
		}

		request.Complete(body.LeaseStartDate, body.LeaseEndDate, body.RentAmount, body.SecurityDeposit)

		result := tx.Model(&models.PropertyRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusAgreementAccepted).
			Updates(map[string]interface{}{
				"status":             request.Status,
				"assigned_at":        request.AssignedAt,
				"lease_start_date":   request.LeaseStartDate,
				"lease_end_date":     request.LeaseEndDate,
				"rent_amount":        request.RentAmount,
				"security_deposit":   request.SecurityDeposit,
				"assignment_pending": true,
			})
		if result.Error != nil {
			return apperrors.Internal("update request", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.InvalidState("request was modified concurrently")
		}

		return s.applyAssignmentCascade(tx, request)
	})
	if err != nil {
		return nil, err
	}

	s.notify(request.TenantID, models.NotificationAssignmentDone,
		"Property assigned", "Your lease is confirmed", request)

	return s.reload(requestID)
}

// applyAssignmentCascade performs the property and tenant writes for a
// completed request and clears the pending marker. Every write is absolute,
// so re-driving the cascade is safe. A failure reports which writes applied.
func (s *PropertyRequestService) applyAssignmentCascade(db *gorm.DB, request *models.PropertyRequest) error {
	applied := []string{"request"}

	err := db.Model(&models.Property{}).Where("id = ?", request.PropertyID).
		Updates(map[string]interface{}{
			"available":         false,
			"status":            models.PropertyStatusRented,
			"current_tenant_id": request.TenantID,
			"lease_start_date":  request.LeaseStartDate,
			"lease_end_date":    request.LeaseEndDate,
		}).Error
	if err != nil {
		return apperrors.PartialAssignment(applied, fmt.Errorf("property write: %w", err))
	}
	applied = append(applied, "property")

	err = db.Model(&models.User{}).Where("id = ?", request.TenantID).
		Updates(map[string]interface{}{
			"property_rented_id": request.PropertyID,
			"lease_start_date":   request.LeaseStartDate,
			"lease_end_date":     request.LeaseEndDate,
			"rent_amount":        request.RentAmount,
			"security_deposit":   request.SecurityDeposit,
		}).Error
	if err != nil {
		return apperrors.PartialAssignment(applied, fmt.Errorf("tenant write: %w", err))
	}
	applied = append(applied, "user")

	err = db.Model(&models.PropertyRequest{}).Where("id = ?", request.ID).
		Update("assignment_pending", false).Error
	if err != nil {
		return apperrors.PartialAssignment(applied, fmt.Errorf("clear pending marker: %w", err))
	}
	return nil
}

// RecoverPendingAssignments re-drives cascades for requests left Completed
// with the pending marker still set. Called by the lease scheduler.
func (s *PropertyRequestService) RecoverPendingAssignments() (int, error) {
	var pending []*models.PropertyRequest
	err := s.db.Where("status = ? AND assignment_pending = ?",
		models.RequestStatusCompleted, true).Find(&pending).Error
	if err != nil {
		return 0, apperrors.Internal("query pending assignments", err)
	}

	recovered := 0
	for _, request := range pending {
		if err := s.applyAssignmentCascade(s.db, request); err != nil {
			s.log.Errorf("Failed to recover assignment for request %d: %v", request.ID, err)
			continue
		}
		recovered++
	}
	return recovered, nil
}

// ListByLandlord returns the landlord's requests with denormalized summaries.
func (s *PropertyRequestService) ListByLandlord(landlordID uint, status string, propertyID uint, page, pageSize int) ([]*models.PropertyRequest, int64, error) {
	query := s.db.Model(&models.PropertyRequest{}).Where("landlord_id = ?", landlordID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID > 0 {
		query = query.Where("property_id = ?", propertyID)
	}
	return s.list(query, "Tenant", page, pageSize)
}

// ListByTenant returns the tenant's requests with denormalized summaries.
func (s *PropertyRequestService) ListByTenant(tenantID uint, status string, page, pageSize int) ([]*models.PropertyRequest, int64, error) {
	query := s.db.Model(&models.PropertyRequest{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return s.list(query, "Landlord", page, pageSize)
}

// Stats aggregates the landlord's requests by status.
func (s *PropertyRequestService) Stats(landlordID uint) (*RequestStats, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount

	err := s.db.Model(&models.PropertyRequest{}).
		Select("status, COUNT(*) as count").
		Where("landlord_id = ?", landlordID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("aggregate request stats", err)
	}

	stats := &RequestStats{ByStatus: make(map[string]int64)}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}

// validateSelectedAgreement enforces ownership and, when the agreement pins a
// property or tenant, that they match the request.
func (s *PropertyRequestService) validateSelectedAgreement(landlordID, agreementID uint, request *models.PropertyRequest) error {
	var agreement models.Agreement
	err := s.db.Where("id = ? AND landlord_id = ?", agreementID, landlordID).First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("agreement %d not found or not yours", agreementID)
		}
		return apperrors.Internal("query agreement", err)
	}

	if agreement.PropertyID != nil && *agreement.PropertyID != request.PropertyID {
		return apperrors.Validation("agreement is tied to a different property")
	}
	if agreement.TenantID != nil && *agreement.TenantID != request.TenantID {
		return apperrors.Validation("agreement is tied to a different tenant")
	}
	return nil
}

// transition applies a status-guarded update: the write lands only if the
// request is still in one of the expected pre-states.
func (s *PropertyRequestService) transition(requestID uint, fromStatuses []string, updates map[string]interface{}) error {
	result := s.db.Model(&models.PropertyRequest{}).
		Where("id = ? AND status IN ?", requestID, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return apperrors.Internal("update request", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.InvalidState("request was modified concurrently")
	}
	return nil
}

// list runs a prepared query with count, preloads, and paging.
func (s *PropertyRequestService) list(query *gorm.DB, counterparty string, page, pageSize int) ([]*models.PropertyRequest, int64, error) {
	var requests []*models.PropertyRequest
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count requests", err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Property").Preload(counterparty).Preload("SelectedAgreement").
		Order("created_at DESC").Offset(offset).Limit(pageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list requests", err)
	}
	return requests, total, nil
}

func (s *PropertyRequestService) getOwnedByLandlord(landlordID, requestID uint) (*models.PropertyRequest, error) {
	return s.getOwnedByLandlordTx(s.db, landlordID, requestID)
}

// getOwnedByLandlordTx fetches a request scoped to its landlord: absent and
// not-owned both surface as not-found, so probing ids leaks nothing.
func (s *PropertyRequestService) getOwnedByLandlordTx(db *gorm.DB, landlordID, requestID uint) (*models.PropertyRequest, error) {
	var request models.PropertyRequest
	err := db.Where("id = ? AND landlord_id = ?", requestID, landlordID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("request not found")
		}
		return nil, apperrors.Internal("query request", err)
	}
	return &request, nil
}

// getOwnedByTenant fetches a request scoped to its tenant.
func (s *PropertyRequestService) getOwnedByTenant(tenantID, requestID uint) (*models.PropertyRequest, error) {
	var request models.PropertyRequest
	err := s.db.Where("id = ? AND tenant_id = ?", requestID, tenantID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("request not found")
		}
		return nil, apperrors.Internal("query request", err)
	}
	return &request, nil
}

// reload fetches a request with its standard preloads.
func (s *PropertyRequestService) reload(requestID uint) (*models.PropertyRequest, error) {
	var request models.PropertyRequest
	err := s.db.Preload("Property").Preload("Tenant").Preload("Landlord").
		Preload("SelectedAgreement").First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("request not found")
		}
		return nil, apperrors.Internal("query request", err)
	}
	return &request, nil
}

// notify sends a workflow notification; delivery problems are logged only.
func (s *PropertyRequestService) notify(userID uint, kind, title, message string, request *models.PropertyRequest) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(userID, kind, title, message, map[string]interface{}{
		"request_id":  request.ID,
		"property_id": request.PropertyID,
		"status":      request.Status,
	})
	if err != nil {
		s.log.Warnf("Failed to notify user %d about request %d: %v", userID, request.ID, err)
	}
}
