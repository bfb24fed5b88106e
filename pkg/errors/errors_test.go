package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Clone(ErrNotFound, "period log not found"))

	appErr := FromError(err)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "period log not found", appErr.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "internal server error: boom", appErr.Error())
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesByCode(t *testing.T) {
	clone := Clone(ErrCacheMiss, "")
	assert.True(t, stdErrors.Is(clone, ErrCacheMiss))
	assert.False(t, stdErrors.Is(clone, ErrNotFound))
	assert.NotSame(t, ErrCacheMiss, clone)
}
