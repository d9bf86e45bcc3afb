package services_test

import (
	"testing"

	"renthub/internal/models"
	"renthub/internal/services"
	apperrors "renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestPropertyCreate(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)

	svc := services.NewPropertyService(db)

	property, err := svc.Create(landlord.ID, &services.PropertyRequestBody{
		Title:     "Sunny 2BR",
		Address:   "12 Main St",
		City:      "Springfield",
		Rent:      1200,
		Type:      models.PropertyTypeApartment,
		Bedrooms:  2,
		Amenities: []string{"parking", "laundry"},
	})
	assert.NoError(t, err)
	assert.True(t, property.Available)
	assert.Equal(t, models.PropertyStatusAvailable, property.Status)
	assert.Equal(t, landlord.ID, property.LandlordID)

	_, err = svc.Create(landlord.ID, &services.PropertyRequestBody{
		Title: "Weird", Address: "1 Odd Ln", Type: "castle",
	})
	assertKind(t, err, apperrors.KindValidation)
}

func TestPropertyUpdate_Scoped(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	other := createUser(t, db, models.RoleLandlord)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyService(db)

	body := &services.PropertyRequestBody{
		Title: "Renovated 2BR", Address: "12 Main St", Rent: 1350,
		Type: models.PropertyTypeApartment,
	}
	updated, err := svc.Update(landlord.ID, property.ID, body)
	assert.NoError(t, err)
	assert.Equal(t, "Renovated 2BR", updated.Title)
	assert.Equal(t, 1350.0, updated.Rent)

	_, err = svc.Update(other.ID, property.ID, body)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestPropertyDelete_Guards(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	property := createProperty(t, db, landlord.ID)

	svc := services.NewPropertyService(db)
	requests := services.NewPropertyRequestService(db, nil)

	// an open request blocks deletion
	_, err := requests.Create(tenant.ID, &services.CreateRequestBody{PropertyID: property.ID})
	assert.NoError(t, err)
	err = svc.Delete(landlord.ID, property.ID)
	assertKind(t, err, apperrors.KindConflict)

	// a rented property cannot be deleted at all
	rented := createProperty(t, db, landlord.ID)
	assert.NoError(t, db.Model(rented).Updates(map[string]interface{}{
		"available": false, "status": models.PropertyStatusRented, "current_tenant_id": tenant.ID,
	}).Error)
	err = svc.Delete(landlord.ID, rented.ID)
	assertKind(t, err, apperrors.KindInvalidState)

	// clean deletion works
	free := createProperty(t, db, landlord.ID)
	assert.NoError(t, svc.Delete(landlord.ID, free.ID))
	_, err = svc.GetByID(free.ID)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestPropertyList_Filters(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, models.RoleLandlord)

	svc := services.NewPropertyService(db)

	seed := []services.PropertyRequestBody{
		{Title: "A", Address: "1 A St", City: "Springfield", Rent: 900, Type: models.PropertyTypeStudio, Bedrooms: 0},
		{Title: "B", Address: "2 B St", City: "Springfield", Rent: 1400, Type: models.PropertyTypeApartment, Bedrooms: 2},
		{Title: "C", Address: "3 C St", City: "Shelbyville", Rent: 2100, Type: models.PropertyTypeHouse, Bedrooms: 4},
	}
	for i := range seed {
		_, err := svc.Create(landlord.ID, &seed[i])
		assert.NoError(t, err)
	}

	byCity, total, err := svc.List(&services.PropertyFilter{City: "Springfield"}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byCity, 2)

	byRent, total, err := svc.List(&services.PropertyFilter{MinRent: 1000, MaxRent: 2000}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "B", byRent[0].Title)

	byBedrooms, total, err := svc.List(&services.PropertyFilter{Bedrooms: 3}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "C", byBedrooms[0].Title)

	mine, total, err := svc.ListByLandlord(landlord.ID, "", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, mine, 2)
}
