package resolve

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknownKey, "UnknownKey"},
		{KindMissingField, "MissingField"},
		{KindTypeMismatch, "TypeMismatch"},
		{KindConstraintViolation, "ConstraintViolation"},
		{Kind(0), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Kind:   KindTypeMismatch,
		Key:    KeyVersionCode,
		Source: SourceEnv,
		Reason: `"abc" is not an integer`,
	}
	assert.Equal(t, `type mismatch "versionCode" (from env): "abc" is not an integer`, err.Error())
}

func TestValidationError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("resolving build descriptor: %w", missingField(KeyVersionName))

	assert.True(t, errors.Is(err, ErrMissingField))
	assert.False(t, errors.Is(err, ErrUnknownKey))
	assert.Equal(t, KindMissingField, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}
