package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/shared/errors"
)

type sampleCommand struct {
	AssetID uint64   `json:"assetId" validate:"gt=0"`
	Receipt string   `json:"receipt" validate:"notblank"`
	Tags    []string `json:"tags" validate:"max=2"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(sampleCommand{AssetID: 1, Receipt: "r"}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := ValidateStruct(sampleCommand{Receipt: "  ", Tags: []string{"a", "b", "c"}})
		require.Error(t, err)

		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Details, "assetId must be greater than 0")
		assert.Contains(t, appErr.Details, "receipt is required")
		assert.Contains(t, appErr.Details, "tags must contain at most 2 items")
	})
}
