package asset

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset_UploadLifecycle(t *testing.T) {
	a, err := NewUpload("final.mp4", 1024, "video/mp4", decimal.RequireFromString("5.99"))
	require.NoError(t, err)
	assert.Equal(t, StatusUploading, a.Status())
	assert.False(t, a.IsReady())

	require.NoError(t, a.Commit("Cup Final", "extended", decimal.RequireFromString("3.50"), []string{"football"}))
	assert.Equal(t, StatusProcessing, a.Status())
	assert.Equal(t, "Cup Final", a.Title())
	assert.True(t, a.Price().Equal(decimal.RequireFromString("3.5")))

	require.NoError(t, a.MarkReady())
	assert.True(t, a.IsReady())

	assert.Error(t, a.MarkFailed(), "ready assets cannot fail")
	assert.Error(t, a.Commit("again", "", decimal.Zero, nil))
}

func TestAsset_MarkReadyRequiresProcessing(t *testing.T) {
	a, err := NewUpload("clip.mp4", 10, "video/mp4", decimal.Zero)
	require.NoError(t, err)
	assert.Error(t, a.MarkReady())
	require.NoError(t, a.MarkFailed())
	assert.Equal(t, StatusFailed, a.Status())
}

func TestNewCatalogEntry(t *testing.T) {
	_, err := NewCatalogEntry("Highlights", "", decimal.RequireFromString("-1"), ProviderHLS, "", nil)
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewCatalogEntry("Highlights", "", decimal.Zero, ProviderYouTube, "", nil)
	assert.ErrorIs(t, err, ErrYouTubeIDMissing)

	a, err := NewCatalogEntry("Highlights", "", decimal.Zero, ProviderYouTube, "dQw4w9WgXcQ", []string{"a"})
	require.NoError(t, err)
	assert.True(t, a.IsReady())

	tags := a.Tags()
	tags[0] = "mutated"
	assert.Equal(t, []string{"a"}, a.Tags())
}
