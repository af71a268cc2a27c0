package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/config"
)

func hlsAsset(t *testing.T, id uint64) *asset.Asset {
	t.Helper()
	a, err := asset.ReconstructAsset(id, "Derby", "", decimal.RequireFromString("5.99"), asset.StatusReady,
		asset.ProviderHLS, "", nil, "", 0, "", time.Now(), time.Now())
	require.NoError(t, err)
	return a
}

func youtubeAsset(t *testing.T, id uint64, ytID string) *asset.Asset {
	t.Helper()
	a, err := asset.ReconstructAsset(id, "Highlights", "", decimal.Zero, asset.StatusReady,
		asset.ProviderYouTube, ytID, nil, "", 0, "", time.Now(), time.Now())
	require.NoError(t, err)
	return a
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider("https://cdn.test/", 5*time.Minute)
	p.now = func() time.Time { return time.Unix(1000, 0) }

	d, err := p.GenerateAccessDescriptor(context.Background(), hlsAsset(t, 42))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/hls/42/playlist.m3u8?expires=1300", d.ManifestURL)
	assert.Equal(t, 300, d.ExpiresIn)

	u, err := p.GenerateUploadURL(context.Background(), 42, "../final cut.mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.UploadURL, "https://cdn.test/upload/42/final%20cut.mp4?"))

	yt, err := p.GenerateAccessDescriptor(context.Background(), youtubeAsset(t, 7, "abc123"))
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", yt.EmbedURL)
	assert.Empty(t, yt.ManifestURL)
}

func TestSignedProvider_TokenRoundTrip(t *testing.T) {
	p, err := NewSignedProvider("https://cdn.test", "s3cret", time.Minute)
	require.NoError(t, err)

	d, err := p.GenerateAccessDescriptor(context.Background(), hlsAsset(t, 42))
	require.NoError(t, err)

	parsed, err := url.Parse(d.ManifestURL)
	require.NoError(t, err)
	claims, err := p.ParseToken(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.AssetID)
	assert.Equal(t, ScopeStream, claims.Scope)

	other, err := NewSignedProvider("https://cdn.test", "other", time.Minute)
	require.NoError(t, err)
	_, err = other.ParseToken(parsed.Query().Get("token"))
	assert.Error(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = p.ParseToken(parsed.Query().Get("token"))
	assert.Error(t, err, "expired token")

	_, err = NewSignedProvider("https://cdn.test", "", time.Minute)
	assert.Error(t, err)
}

func TestYouTubeProvider(t *testing.T) {
	p := NewYouTubeProvider()

	d, err := p.GenerateAccessDescriptor(context.Background(), youtubeAsset(t, 1, "xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", d.YouTubeID)

	_, err = p.GenerateAccessDescriptor(context.Background(), hlsAsset(t, 2))
	assert.Error(t, err)

	_, err = p.GenerateUploadURL(context.Background(), 1, "a.mp4")
	assert.ErrorIs(t, err, ErrUploadsUnsupported)
}

func TestNew(t *testing.T) {
	p, err := New(config.StorageConfig{Provider: "mock", BaseURL: "https://cdn.test"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	_, err = New(config.StorageConfig{Provider: "signed"})
	assert.Error(t, err)

	_, err = New(config.StorageConfig{Provider: "s3"})
	assert.Error(t, err)
}
