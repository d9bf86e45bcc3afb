package services_test

import (
	"testing"
	"time"

	"renthub/internal/models"
	"renthub/internal/services"
	apperrors "renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// rentOut wires a property to a tenant the way a completed assignment would.
func rentOut(t *testing.T, db *gorm.DB, property *models.Property, tenant *models.User) {
	assert.NoError(t, db.Model(property).Updates(map[string]interface{}{
		"available": false, "status": models.PropertyStatusRented, "current_tenant_id": tenant.ID,
	}).Error)
	assert.NoError(t, db.Model(tenant).Update("property_rented_id", property.ID).Error)
}

func TestPaymentCreate(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPaymentService(db, nil)

	// no tenant yet
	_, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, 1, 0),
	})
	assertKind(t, err, apperrors.KindInvalidState)

	rentOut(t, db, property, tenant)

	payment, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, tenant.ID, payment.TenantID)

	// someone else's property looks absent
	other := createUser(t, db, models.RoleLandlord)
	_, err = svc.Create(other.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now(),
	})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestPaymentPay(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)
	rentOut(t, db, property, tenant)

	notifier := services.NewNotificationService(db, nil)
	svc := services.NewPaymentService(db, notifier)

	payment, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(t, err)

	paid, err := svc.Pay(tenant.ID, payment.ID, &services.PayBody{Method: "card"})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, "card", paid.Method)

	// paying twice fails
	_, err = svc.Pay(tenant.ID, payment.ID, &services.PayBody{Method: "card"})
	assertKind(t, err, apperrors.KindInvalidState)

	// the landlord hears about the settlement
	_, total, err := notifier.ListByUser(landlord.ID, true, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// another tenant cannot settle it
	other := createUser(t, db, models.RoleTenant)
	_, err = svc.Pay(other.ID, payment.ID, &services.PayBody{Method: "cash"})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestMarkOverduePayments(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)
	rentOut(t, db, property, tenant)

	svc := services.NewPaymentService(db, nil)

	overdue, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, 0, -3),
	})
	assert.NoError(t, err)
	current, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
		PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(t, err)

	flagged, err := svc.MarkOverduePayments()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	var fresh models.PaymentRecord
	assert.NoError(t, db.First(&fresh, overdue.ID).Error)
	assert.Equal(t, models.PaymentStatusOverdue, fresh.Status)

	var freshCurrent models.PaymentRecord
	assert.NoError(t, db.First(&freshCurrent, current.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, freshCurrent.Status)

	// an overdue payment can still be settled
	paid, err := svc.Pay(tenant.ID, overdue.ID, &services.PayBody{Method: "bank_transfer"})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
}

func TestPaymentListByUser(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)
	rentOut(t, db, property, tenant)

	svc := services.NewPaymentService(db, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(landlord.ID, &services.CreatePaymentBody{
			PropertyID: property.ID, Amount: 1200, DueDate: time.Now().AddDate(0, i+1, 0),
		})
		assert.NoError(t, err)
	}

	asLandlord, total, err := svc.ListByUser(landlord.ID, models.RoleLandlord, "", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, asLandlord, 3)

	asTenant, total, err := svc.ListByUser(tenant.ID, models.RoleTenant, models.PaymentStatusPending, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, asTenant, 2)
}
