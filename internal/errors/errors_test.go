package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"croprotation/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCode(t *testing.T) {
	base := NotFound("crop")
	wrapped := Wrap(base, "failed to fetch crop")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, "failed to fetch crop: crop not found", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeForDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
		want int
	}{
		{core.ErrPlanNotFound, CodeNotFound, http.StatusNotFound},
		{core.ErrInvalidStrategy, CodeInvalidStrategy, http.StatusBadRequest},
		{core.ErrNoStrategySelected, CodeNoStrategySelected, http.StatusConflict},
		{core.NewNumericError("hp", "abc"), CodeInvalidNumeric, http.StatusBadRequest},
		{core.ErrDuplicateCrop, CodeConflict, http.StatusConflict},
		{core.ErrForbidden, CodeForbidden, http.StatusForbidden},
		{core.NewValidationError(core.ErrInvalidPlan, "unit", "bad"), CodeValidationError, http.StatusBadRequest},
		{stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, GetCode(Wrapf(tt.err, "context %d", 1)))
		})
	}
}

func TestWrappedSentinelStillMatches(t *testing.T) {
	err := Wrap(fmt.Errorf("lookup: %w", core.ErrCropNotFound), "failed to create plan")
	assert.True(t, stderrors.Is(err, core.ErrNotFound))
}
