package models_test

import (
	"testing"
	"time"

	"renthub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPropertyRequest_Guards(t *testing.T) {
	cases := []struct {
		status     string
		respond    bool
		sendAgree  bool
		acceptable bool
		complete   bool
		open       bool
		terminal   bool
	}{
		{models.RequestStatusPending, true, true, false, false, true, false},
		{models.RequestStatusApproved, false, true, false, false, true, false},
		{models.RequestStatusAgreementSent, false, false, true, false, true, false},
		{models.RequestStatusAgreementAccepted, false, false, false, true, false, false},
		{models.RequestStatusCompleted, false, false, false, false, false, true},
		{models.RequestStatusRejected, false, false, false, false, false, true},
	}

	for _, tc := range cases {
		r := &models.PropertyRequest{Status: tc.status}
		assert.Equal(t, tc.respond, r.CanRespond(), "CanRespond in %s", tc.status)
		assert.Equal(t, tc.sendAgree, r.CanSendAgreement(), "CanSendAgreement in %s", tc.status)
		assert.Equal(t, tc.acceptable, r.CanAcceptAgreement(), "CanAcceptAgreement in %s", tc.status)
		assert.Equal(t, tc.complete, r.CanComplete(), "CanComplete in %s", tc.status)
		assert.Equal(t, tc.open, r.IsOpen(), "IsOpen in %s", tc.status)
		assert.Equal(t, tc.terminal, r.IsTerminal(), "IsTerminal in %s", tc.status)
	}
}

func TestPropertyRequest_ApproveReject(t *testing.T) {
	r := &models.PropertyRequest{Status: models.RequestStatusPending}
	r.Approve("come by on Saturday")

	assert.Equal(t, models.RequestStatusApproved, r.Status)
	assert.Equal(t, "come by on Saturday", r.LandlordResponse)
	assert.NotNil(t, r.ResponseDate)

	r = &models.PropertyRequest{Status: models.RequestStatusPending}
	r.Reject("already taken")

	assert.Equal(t, models.RequestStatusRejected, r.Status)
	assert.Equal(t, "already taken", r.LandlordResponse)
	assert.True(t, r.IsTerminal())
}

func TestPropertyRequest_SendAgreement(t *testing.T) {
	agreementID := uint(7)
	r := &models.PropertyRequest{Status: models.RequestStatusApproved}
	r.SendAgreement(&agreementID, "")

	assert.Equal(t, models.RequestStatusAgreementSent, r.Status)
	assert.Equal(t, &agreementID, r.SelectedAgreementID)
	assert.NotNil(t, r.ResponseDate)

	// custom terms without a stored agreement
	r = &models.PropertyRequest{Status: models.RequestStatusPending}
	r.SendAgreement(nil, "12 month lease, no pets")

	assert.Equal(t, models.RequestStatusAgreementSent, r.Status)
	assert.Nil(t, r.SelectedAgreementID)
	assert.Equal(t, "12 month lease, no pets", r.CustomAgreementTerms)
}

func TestPropertyRequest_RejectAgreement(t *testing.T) {
	r := &models.PropertyRequest{Status: models.RequestStatusAgreementSent}
	r.RejectAgreement("terms too high")

	assert.Equal(t, models.RequestStatusRejected, r.Status)
	assert.Equal(t, "Agreement rejected by tenant: terms too high", r.LandlordResponse)

	r = &models.PropertyRequest{Status: models.RequestStatusAgreementSent}
	r.RejectAgreement("")

	assert.Equal(t, "Agreement rejected by tenant", r.LandlordResponse)
}

func TestPropertyRequest_Complete(t *testing.T) {
	start := time.Now()
	end := start.AddDate(1, 0, 0)

	r := &models.PropertyRequest{Status: models.RequestStatusAgreementAccepted}
	r.AcceptAgreement()
	assert.NotNil(t, r.AgreementAcceptedAt)

	r.Complete(&start, &end, 1500, 3000)

	assert.Equal(t, models.RequestStatusCompleted, r.Status)
	assert.NotNil(t, r.AssignedAt)
	assert.Equal(t, 1500.0, *r.RentAmount)
	assert.Equal(t, 3000.0, *r.SecurityDeposit)
	assert.True(t, r.AssignmentPending)
}

func TestOpenRequestStatuses(t *testing.T) {
	open := models.OpenRequestStatuses()
	assert.ElementsMatch(t, []string{
		models.RequestStatusPending,
		models.RequestStatusApproved,
		models.RequestStatusAgreementSent,
	}, open)
}
