package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrAlreadyPaid, "2024-03 already paid"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrAlreadyPaid.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "2024-03 already paid", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestIsComparesCodes(t *testing.T) {
	err := WrapAs(errors.New("range"), ErrOutOfRange, "month 2030-01 is after current month 2024-07")
	assert.True(t, Is(err, ErrOutOfRange))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(errors.New("plain"), ErrOutOfRange))
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Contains(t, err.Error(), "after current month")
}
