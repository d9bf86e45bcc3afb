package services_test

import (
	"fmt"
	"testing"
	"time"

	"renthub/internal/models"
	"renthub/internal/services"
	apperrors "renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Agreement{},
		&models.AgreementDocument{},
		&models.PropertyRequest{},
		&models.PaymentRecord{},
		&models.MaintenanceRequest{},
		&models.Notification{},
	)
	assert.NoError(t, err)
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("%s%d", role, userSeq),
		Email:    fmt.Sprintf("%s%d@example.com", role, userSeq),
		Name:     "Test " + role,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	assert.NoError(t, user.SetPassword("secret123"))
	assert.NoError(t, db.Create(user).Error)
	return user
}

func createProperty(t *testing.T, db *gorm.DB, landlordID uint) *models.Property {
	property := &models.Property{
		Title:      "Sunny 2BR",
		Address:    "12 Main St",
		City:       "Springfield",
		Rent:       1200,
		Type:       models.PropertyTypeApartment,
		Bedrooms:   2,
		Available:  true,
		Status:     models.PropertyStatusAvailable,
		LandlordID: landlordID,
	}
	assert.NoError(t, db.Create(property).Error)
	return property
}

// openRequest drives a fresh request to the wanted status through the service.
func openRequest(t *testing.T, db *gorm.DB, svc *services.PropertyRequestService,
	landlord, tenant *models.User, property *models.Property, status string) *models.PropertyRequest {

	request, err := svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assert.NoError(t, err)
	if status == models.RequestStatusPending {
		return request
	}

	request, err = svc.Respond(landlord.ID, request.ID, &services.RespondBody{Action: "approve"})
	assert.NoError(t, err)
	if status == models.RequestStatusApproved {
		return request
	}

	request, err = svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{CustomTerms: "standard terms"})
	assert.NoError(t, err)
	if status == models.RequestStatusAgreementSent {
		return request
	}

	request, err = svc.AcceptAgreement(tenant.ID, request.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAgreementAccepted, request.Status)
	return request
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	appErr, ok := apperrors.AsAppError(err)
	if assert.True(t, ok, "expected AppError, got %v", err) {
		assert.Equal(t, kind, appErr.Kind)
	}
}

func TestCreateRequest(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	notifier := services.NewNotificationService(db, nil)
	svc := services.NewPropertyRequestService(db, notifier)

	request, err := svc.Create(tenant.ID, &services.CreateRequestBody{
		PropertyID: property.ID,
		Message:    "Is it still available?",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, landlord.ID, request.LandlordID)
	assert.Equal(t, tenant.ID, request.TenantID)
	assert.NotNil(t, request.Property)

	// landlord gets notified about the new request
	notifications, total, err := notifier.ListByUser(landlord.ID, true, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.NotificationRequestCreated, notifications[0].Kind)
}

func TestCreateRequest_Failures(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)

	_, err := svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: 9999})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = svc.Create(landlord.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assertKind(t, err, apperrors.KindValidation)

	assert.NoError(t, db.Model(property).Updates(map[string]interface{}{
		"available": false, "status": models.PropertyStatusRented,
	}).Error)
	_, err = svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assertKind(t, err, apperrors.KindValidation)
}

func TestCreateRequest_DuplicateOpen(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)

	request, err := svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assert.NoError(t, err)

	_, err = svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assertKind(t, err, apperrors.KindConflict)

	// still blocked after approval and agreement delivery
	_, err = svc.Respond(landlord.ID, request.ID, &services.RespondBody{Action: "approve"})
	assert.NoError(t, err)
	_, err = svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assertKind(t, err, apperrors.KindConflict)

	// a rejected request no longer blocks
	assert.NoError(t, db.Model(&models.PropertyRequest{}).Where("id = ?", request.ID).
		Update("status", models.RequestStatusRejected).Error)
	_, err = svc.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assert.NoError(t, err)
}

func TestRespond(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	updated, err := svc.Respond(landlord.ID, request.ID, &services.RespondBody{
		Action:   "approve",
		Response: "Looks good, let's proceed",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, updated.Status)
	assert.Equal(t, "Looks good, let's proceed", updated.LandlordResponse)
	assert.NotNil(t, updated.ResponseDate)

	// responding a second time is an invalid transition
	_, err = svc.Respond(landlord.ID, request.ID, &services.RespondBody{Action: "reject"})
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestRespond_Failures(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	other := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	_, err := svc.Respond(landlord.ID, request.ID, &services.RespondBody{Action: "maybe"})
	assertKind(t, err, apperrors.KindValidation)

	// another landlord cannot even see the request
	_, err = svc.Respond(other.ID, request.ID, &services.RespondBody{Action: "approve"})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = svc.Respond(landlord.ID, 9999, &services.RespondBody{Action: "approve"})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestSendAgreement(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	agreement := &models.Agreement{
		Title:      "Standard lease",
		Terms:      "12 months, rent due on the 1st",
		LandlordID: landlord.ID,
		Status:     models.AgreementStatusActive,
	}
	assert.NoError(t, db.Create(agreement).Error)

	svc := services.NewPropertyRequestService(db, nil)

	// agreement may go straight out on a pending request
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)
	updated, err := svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		AgreementID: &agreement.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAgreementSent, updated.Status)
	assert.Equal(t, agreement.ID, *updated.SelectedAgreementID)
	assert.NotNil(t, updated.SelectedAgreement)

	// and again from an approved request, with custom terms
	property2 := createProperty(t, db, landlord.ID)
	request2 := openRequest(t, db, svc, landlord, tenant, property2, models.RequestStatusApproved)
	updated2, err := svc.SendAgreement(landlord.ID, request2.ID, &services.SendAgreementBody{
		CustomTerms: "6 months, furnished",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAgreementSent, updated2.Status)
	assert.Nil(t, updated2.SelectedAgreementID)
	assert.Equal(t, "6 months, furnished", updated2.CustomAgreementTerms)
}

func TestSendAgreement_ForeignAgreement(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	other := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	foreign := &models.Agreement{
		Title:      "Someone else's lease",
		Terms:      "n/a",
		LandlordID: other.ID,
	}
	assert.NoError(t, db.Create(foreign).Error)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	_, err := svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		AgreementID: &foreign.ID,
	})
	assertKind(t, err, apperrors.KindValidation)

	// ownership is checked before the status guard: a foreign agreement id on
	// a rejected request is still a validation error, not invalid state
	assert.NoError(t, db.Model(&models.PropertyRequest{}).Where("id = ?", request.ID).
		Update("status", models.RequestStatusRejected).Error)
	_, err = svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		AgreementID: &foreign.ID,
	})
	assertKind(t, err, apperrors.KindValidation)
}

func TestSendAgreement_MismatchedPins(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	otherTenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)
	otherProperty := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusApproved)

	pinnedProperty := &models.Agreement{
		Title: "Pinned", Terms: "n/a", LandlordID: landlord.ID, PropertyID: &otherProperty.ID,
	}
	assert.NoError(t, db.Create(pinnedProperty).Error)
	_, err := svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		AgreementID: &pinnedProperty.ID,
	})
	assertKind(t, err, apperrors.KindValidation)

	pinnedTenant := &models.Agreement{
		Title: "Pinned", Terms: "n/a", LandlordID: landlord.ID, TenantID: &otherTenant.ID,
	}
	assert.NoError(t, db.Create(pinnedTenant).Error)
	_, err = svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		AgreementID: &pinnedTenant.ID,
	})
	assertKind(t, err, apperrors.KindValidation)
}

func TestSendAgreement_WrongState(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusAgreementSent)

	_, err := svc.SendAgreement(landlord.ID, request.ID, &services.SendAgreementBody{
		CustomTerms: "revised terms",
	})
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestAcceptAgreement(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	stranger := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusAgreementSent)

	// someone else's request looks absent
	_, err := svc.AcceptAgreement(stranger.ID, request.ID)
	assertKind(t, err, apperrors.KindNotFound)

	updated, err := svc.AcceptAgreement(tenant.ID, request.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAgreementAccepted, updated.Status)
	assert.NotNil(t, updated.AgreementAcceptedAt)

	// accepting twice is an invalid transition
	_, err = svc.AcceptAgreement(tenant.ID, request.ID)
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestAcceptAgreement_NothingToAccept(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	_, err := svc.AcceptAgreement(tenant.ID, request.ID)
	assertKind(t, err, apperrors.KindInvalidState)
}

func TestRejectAgreement(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	notifier := services.NewNotificationService(db, nil)
	svc := services.NewPropertyRequestService(db, notifier)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusAgreementSent)

	updated, err := svc.RejectAgreement(tenant.ID, request.ID, &services.RejectAgreementBody{
		Reason: "terms too high",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, updated.Status)
	assert.Equal(t, "Agreement rejected by tenant: terms too high", updated.LandlordResponse)

	// the property stays on the market
	var fresh models.Property
	assert.NoError(t, db.First(&fresh, property.ID).Error)
	assert.True(t, fresh.Available)
	assert.Equal(t, models.PropertyStatusAvailable, fresh.Status)
	assert.Nil(t, fresh.CurrentTenantID)
}

func TestCompleteAssignment(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusAgreementAccepted)

	start := time.Now()
	end := start.AddDate(1, 0, 0)
	updated, err := svc.CompleteAssignment(landlord.ID, request.ID, &services.CompleteAssignmentBody{
		LeaseStartDate:  &start,
		LeaseEndDate:    &end,
		RentAmount:      1000,
		SecurityDeposit: 2000,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, updated.Status)
	assert.NotNil(t, updated.AssignedAt)
	assert.Equal(t, 1000.0, *updated.RentAmount)
	assert.Equal(t, 2000.0, *updated.SecurityDeposit)
	assert.False(t, updated.AssignmentPending)

	// property side of the cascade
	var freshProperty models.Property
	assert.NoError(t, db.First(&freshProperty, property.ID).Error)
	assert.False(t, freshProperty.Available)
	assert.Equal(t, models.PropertyStatusRented, freshProperty.Status)
	assert.Equal(t, tenant.ID, *freshProperty.CurrentTenantID)

	// tenant side of the cascade
	var freshTenant models.User
	assert.NoError(t, db.First(&freshTenant, tenant.ID).Error)
	assert.Equal(t, property.ID, *freshTenant.PropertyRentedID)
	assert.Equal(t, 1000.0, *freshTenant.RentAmount)
	assert.Equal(t, 2000.0, *freshTenant.SecurityDeposit)
}

func TestCompleteAssignment_Failures(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	// not yet accepted
	_, err := svc.CompleteAssignment(landlord.ID, request.ID, &services.CompleteAssignmentBody{
		RentAmount: 1000, SecurityDeposit: 0,
	})
	assertKind(t, err, apperrors.KindInvalidState)

	// end before start
	start := time.Now()
	end := start.AddDate(0, -1, 0)
	_, err = svc.CompleteAssignment(landlord.ID, request.ID, &services.CompleteAssignmentBody{
		LeaseStartDate: &start, LeaseEndDate: &end,
		RentAmount: 1000, SecurityDeposit: 0,
	})
	assertKind(t, err, apperrors.KindValidation)
}

func TestRecoverPendingAssignments(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	rent := 900.0
	deposit := 1800.0
	now := time.Now()
	stuck := &models.PropertyRequest{
		PropertyID:        property.ID,
		TenantID:          tenant.ID,
		LandlordID:        landlord.ID,
		Status:            models.RequestStatusCompleted,
		AssignedAt:        &now,
		RentAmount:        &rent,
		SecurityDeposit:   &deposit,
		AssignmentPending: true,
	}
	assert.NoError(t, db.Create(stuck).Error)

	svc := services.NewPropertyRequestService(db, nil)
	recovered, err := svc.RecoverPendingAssignments()
	assert.NoError(t, err)
	assert.Equal(t, 1, recovered)

	var freshProperty models.Property
	assert.NoError(t, db.First(&freshProperty, property.ID).Error)
	assert.Equal(t, models.PropertyStatusRented, freshProperty.Status)
	assert.Equal(t, tenant.ID, *freshProperty.CurrentTenantID)

	var freshRequest models.PropertyRequest
	assert.NoError(t, db.First(&freshRequest, stuck.ID).Error)
	assert.False(t, freshRequest.AssignmentPending)

	// nothing left to recover
	recovered, err = svc.RecoverPendingAssignments()
	assert.NoError(t, err)
	assert.Equal(t, 0, recovered)
}

func TestGetByID_Visibility(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	stranger := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	request := openRequest(t, db, svc, landlord, tenant, property, models.RequestStatusPending)

	_, err := svc.GetByID(tenant.ID, request.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(landlord.ID, request.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(stranger.ID, request.ID)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = svc.GetByID(tenant.ID, 9999)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestListAndStats(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenantA := createUser(t, db, models.RoleTenant)
	tenantB := createUser(t, db, models.RoleTenant)
	propertyA := createProperty(t, db, landlord.ID)
	propertyB := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyRequestService(db, nil)
	openRequest(t, db, svc, landlord, tenantA, propertyA, models.RequestStatusPending)
	openRequest(t, db, svc, landlord, tenantB, propertyA, models.RequestStatusApproved)
	openRequest(t, db, svc, landlord, tenantB, propertyB, models.RequestStatusPending)

	all, total, err := svc.ListByLandlord(landlord.ID, "", 0, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	pending, total, err := svc.ListByLandlord(landlord.ID, models.RequestStatusPending, 0, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range pending {
		assert.Equal(t, models.RequestStatusPending, r.Status)
		assert.NotNil(t, r.Tenant)
	}

	byProperty, total, err := svc.ListByLandlord(landlord.ID, "", propertyB.ID, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, propertyB.ID, byProperty[0].PropertyID)

	mine, total, err := svc.ListByTenant(tenantB.ID, "", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range mine {
		assert.Equal(t, tenantB.ID, r.TenantID)
		assert.NotNil(t, r.Landlord)
	}

	stats, err := svc.Stats(landlord.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[models.RequestStatusPending])
	assert.Equal(t, int64(1), stats.ByStatus[models.RequestStatusApproved])
}
