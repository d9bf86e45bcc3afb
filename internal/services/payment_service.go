package services

import (
	"errors"
	"time"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"

	"gorm.io/gorm"
)

// PaymentService records rent payments against active leases.
type PaymentService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewPaymentService(db *gorm.DB, notifier *NotificationService) *PaymentService {
	return &PaymentService{db: db, notifier: notifier}
}

// CreatePaymentBody schedules a payment for a rented property.
type CreatePaymentBody struct {
	PropertyID uint      `json:"property_id" binding:"required,min=1"`
	Amount     float64   `json:"amount" binding:"required,gt=0"`
	DueDate    time.Time `json:"due_date" binding:"required"`
	Note       string    `json:"note" binding:"max=500"`
}

// PayBody settles a pending payment.
type PayBody struct {
	Method string `json:"method" binding:"required,oneof=card bank_transfer cash"`
}

// Create schedules a rent payment. Only the landlord of the rented property
// may schedule one, and only against the current tenant.
func (s *PaymentService) Create(landlordID uint, body *CreatePaymentBody) (*models.PaymentRecord, error) {
	var property models.Property
	err := s.db.Where("id = ? AND landlord_id = ?", body.PropertyID, landlordID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("property not found")
		}
		return nil, apperrors.Internal("query property", err)
	}
	if property.CurrentTenantID == nil {
		return nil, apperrors.InvalidState("property has no tenant")
	}

	payment := &models.PaymentRecord{
		TenantID:   *property.CurrentTenantID,
		PropertyID: property.ID,
		LandlordID: landlordID,
		Amount:     body.Amount,
		DueDate:    body.DueDate,
		Status:     models.PaymentStatusPending,
		Note:       body.Note,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, apperrors.Internal("create payment", err)
	}
	return payment, nil
}

// Pay settles one of the tenant's pending payments.
func (s *PaymentService) Pay(tenantID, paymentID uint, body *PayBody) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	err := s.db.Where("id = ? AND tenant_id = ?", paymentID, tenantID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("payment not found")
		}
		return nil, apperrors.Internal("query payment", err)
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, apperrors.InvalidState("payment is already settled")
	}

	payment.MarkPaid(body.Method)
	result := s.db.Model(&models.PaymentRecord{}).
		Where("id = ? AND status IN ?", paymentID,
			[]string{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Updates(map[string]interface{}{
			"status":  payment.Status,
			"paid_at": payment.PaidAt,
			"method":  payment.Method,
		})
	if result.Error != nil {
		return nil, apperrors.Internal("update payment", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.InvalidState("payment was modified concurrently")
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(payment.LandlordID, models.NotificationPaymentReceived,
			"Payment received", "A rent payment was settled", map[string]interface{}{
				"payment_id":  payment.ID,
				"property_id": payment.PropertyID,
				"amount":      payment.Amount,
			})
	}
	return &payment, nil
}

// ListByUser returns payments where the user is either party.
func (s *PaymentService) ListByUser(userID uint, role, status string, page, pageSize int) ([]*models.PaymentRecord, int64, error) {
	var payments []*models.PaymentRecord
	var total int64

	query := s.db.Model(&models.PaymentRecord{})
	if role == models.RoleLandlord {
		query = query.Where("landlord_id = ?", userID)
	} else {
		query = query.Where("tenant_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count payments", err)
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Property").Order("due_date DESC").
		Offset(offset).Limit(pageSize).Find(&payments).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list payments", err)
	}
	return payments, total, nil
}

// MarkOverduePayments flags pending payments past due. Called by the lease
// scheduler.
func (s *PaymentService) MarkOverduePayments() (int64, error) {
	result := s.db.Model(&models.PaymentRecord{}).
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, time.Now()).
		Update("status", models.PaymentStatusOverdue)
	if result.Error != nil {
		return 0, apperrors.Internal("mark overdue payments", result.Error)
	}
	return result.RowsAffected, nil
}
