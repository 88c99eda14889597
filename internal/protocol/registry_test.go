package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

func TestRegistryKnowsAllProtocols(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{SpacePursuits, MemoryMatrix, EagleEye, PeripheralDefender, JungleJump} {
		assert.True(t, r.Exists(id), "expected protocol %s", id)
	}
	assert.False(t, r.Exists("pong"))
	assert.Len(t, r.Catalog(), 5)
}

func TestValidateUnknownProtocol(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate("pong", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestValidateFillsDefaultsForOmittedFields(t *testing.T) {
	r := NewRegistry()

	// Only a subset of fields supplied; the result must carry every
	// declared field, omitted ones at their defaults.
	config, err := r.Validate(SpacePursuits, map[string]interface{}{
		"speed": float64(8),
	})
	require.NoError(t, err)

	defaults, err := r.Defaults(SpacePursuits)
	require.NoError(t, err)

	assert.Len(t, config, len(defaults))
	assert.Equal(t, float64(8), config["speed"])
	assert.Equal(t, defaults["contrast"], config["contrast"])
	assert.Equal(t, defaults["backgroundColor"], config["backgroundColor"])
	assert.Equal(t, defaults["dichopticEnabled"], config["dichopticEnabled"])
	assert.Equal(t, defaults["asteroidCount"], config["asteroidCount"])
}

func TestValidateEmptyConfigEqualsDefaults(t *testing.T) {
	r := NewRegistry()

	config, err := r.Validate(MemoryMatrix, nil)
	require.NoError(t, err)

	defaults, err := r.Defaults(MemoryMatrix)
	require.NoError(t, err)
	assert.Equal(t, defaults, config)
}

func TestValidateRejectsOutOfRangeNumber(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate(SpacePursuits, map[string]interface{}{
		"speed": float64(25),
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "speed", appErr.Fields[0].Field)
}

func TestValidateRejectsInvalidEnum(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate(JungleJump, map[string]interface{}{
		"gravity": "zero",
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "gravity", appErr.Fields[0].Field)
}

func TestValidateRejectsWrongTypes(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate(EagleEye, map[string]interface{}{
		"flashMode":  "yes",
		"targetSize": "big",
		"targetType": true,
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 3)
}

func TestValidateRejectsUnknownFields(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate(PeripheralDefender, map[string]interface{}{
		"speed":     float64(5),
		"cheatMode": true,
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "cheatMode", appErr.Fields[0].Field)
}

func TestValidateCollectsMultipleFieldErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate(SpacePursuits, map[string]interface{}{
		"speed":           float64(0),
		"backgroundColor": "purple",
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 2)
}

func TestValidateAcceptsIntegersForNumbers(t *testing.T) {
	r := NewRegistry()

	config, err := r.Validate(MemoryMatrix, map[string]interface{}{
		"gridSize": 6,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(6), config["gridSize"])
}

func TestDefaultsMatchDeclaredFields(t *testing.T) {
	r := NewRegistry()

	def, err := r.Get(SpacePursuits)
	require.NoError(t, err)

	defaults := def.Defaults()
	assert.Equal(t, float64(5), defaults["speed"])
	assert.Equal(t, "black", defaults["backgroundColor"])
	assert.Equal(t, false, defaults["dichopticEnabled"])
	assert.Equal(t, float64(40), defaults["asteroidCount"])
}
