// Package storage defines the collaborator that turns an authorized asset
// into something a player can fetch.
package storage

import (
	"context"

	"github.com/scoutystream/scouty/internal/domain/asset"
)

type Provider interface {
	GenerateAccessDescriptor(ctx context.Context, a *asset.Asset) (*Descriptor, error)
	GenerateUploadURL(ctx context.Context, assetID uint64, fileName string) (*UploadTarget, error)
	Name() string
}

// Descriptor is returned to an authorized caller.
type Descriptor struct {
	Provider    string `json:"provider"`
	AssetID     uint64 `json:"assetId"`
	ManifestURL string `json:"manifestUrl,omitempty"`
	EmbedURL    string `json:"embedUrl,omitempty"`
	YouTubeID   string `json:"youtubeId,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
}

type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}
