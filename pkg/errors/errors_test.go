package errors_test

import (
	"fmt"
	"testing"

	apperrors "renthub/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestCodeMapping(t *testing.T) {
	cases := []struct {
		err  *apperrors.AppError
		code int
	}{
		{apperrors.NotFound("gone"), apperrors.CodeNotFound},
		// forbidden collapses to not-found so owner probes learn nothing
		{apperrors.Forbidden("not yours"), apperrors.CodeNotFound},
		{apperrors.InvalidState("wrong status"), apperrors.CodeInvalidParam},
		{apperrors.Validation("bad field"), apperrors.CodeInvalidParam},
		{apperrors.Conflict("duplicate"), apperrors.CodeConflict},
		{apperrors.Internal("boom", nil), apperrors.CodeServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code(), "kind %s", tc.err.Kind)
	}
}

func TestPartialAssignment(t *testing.T) {
	cause := fmt.Errorf("property write: disk full")
	err := apperrors.PartialAssignment([]string{"request", "property"}, cause)

	assert.Equal(t, apperrors.KindPartialAssignment, err.Kind)
	assert.Equal(t, []string{"request", "property"}, err.Applied)
	assert.ErrorIs(t, err, cause)

	appErr, ok := apperrors.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.KindPartialAssignment, appErr.Kind)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code())
}

func TestAsAppError(t *testing.T) {
	appErr, ok := apperrors.AsAppError(apperrors.NotFound("missing"))
	assert.True(t, ok)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)

	_, ok = apperrors.AsAppError(fmt.Errorf("plain"))
	assert.False(t, ok)

	_, ok = apperrors.AsAppError(nil)
	assert.False(t, ok)
}

func TestConstructorFormatting(t *testing.T) {
	err := apperrors.InvalidState("request in status %s cannot be completed", "Pending")
	assert.Contains(t, err.Error(), "request in status Pending cannot be completed")

	wrapped := apperrors.Internal("update request", fmt.Errorf("timeout"))
	assert.Contains(t, wrapped.Error(), "timeout")
	assert.ErrorIs(t, wrapped, wrapped.Err)
}
