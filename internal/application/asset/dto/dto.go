package dto

import (
	"time"

	"github.com/scoutystream/scouty/internal/domain/asset"
)

type AssetDTO struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	Provider        string    `json:"provider"`
	YouTubeID       string    `json:"youtubeId,omitempty"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	HasAccess       *bool     `json:"hasAccess,omitempty"`
}

func ToAssetDTO(a *asset.Asset) *AssetDTO {
	if a == nil {
		return nil
	}
	return &AssetDTO{
		ID:          a.ID(),
		Title:       a.Title(),
		Description: a.Description(),
		Price:       a.Price().InexactFloat64(),
		Status:      a.Status().String(),
		Provider:    string(a.Provider()),
		YouTubeID:   a.YouTubeID(),
		Tags:        a.Tags(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

type UploadDTO struct {
	AssetID   uint64 `json:"assetId"`
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

type UploadStatusDTO struct {
	AssetID    uint64    `json:"assetId"`
	Status     string    `json:"status"`
	Processing bool      `json:"processing"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
