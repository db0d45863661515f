package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSentinels(t *testing.T) {
	err := NotFoundf("booking %s not found", "b-1")

	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, Conflict))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := Conflictf("booking is already confirmed")
	wrapped := fmt.Errorf("confirm booking: %w", err)

	assert.True(t, errors.Is(wrapped, Conflict))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestExternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Externalw(cause, "payment gateway unreachable")

	assert.True(t, errors.Is(err, External))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "payment gateway unreachable")
}

func TestKindOfUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
