package services_test

import (
	"testing"
	"time"

	"renthub/internal/models"
	"renthub/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestLeaseScheduler_RunsHousekeepingOnStart(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)

	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 6, 0)
	expired := &models.Agreement{
		Title: "Old lease", Terms: "n/a", LandlordID: landlord.ID,
		Status: models.AgreementStatusActive, ExpiresAt: &past,
	}
	current := &models.Agreement{
		Title: "Current lease", Terms: "n/a", LandlordID: landlord.ID,
		Status: models.AgreementStatusActive, ExpiresAt: &future,
	}
	assert.NoError(t, db.Create(expired).Error)
	assert.NoError(t, db.Create(current).Error)

	requestService := services.NewPropertyRequestService(db, nil)
	paymentService := services.NewPaymentService(db, nil)
	scheduler := services.NewLeaseScheduler(db, requestService, paymentService)

	assert.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	// starting twice is refused
	assert.Error(t, scheduler.Start())

	var fresh models.Agreement
	assert.NoError(t, db.First(&fresh, expired.ID).Error)
	assert.Equal(t, models.AgreementStatusExpired, fresh.Status)

	var freshCurrent models.Agreement
	assert.NoError(t, db.First(&freshCurrent, current.ID).Error)
	assert.Equal(t, models.AgreementStatusActive, freshCurrent.Status)
}
