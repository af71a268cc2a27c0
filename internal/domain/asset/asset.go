package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a priced video. Only ready assets can be streamed.
type Asset struct {
	id          uint64
	title       string
	description string
	price       decimal.Decimal
	status      Status
	provider    Provider
	youtubeID   string
	tags        []string
	fileName    string
	fileSize    int64
	mimeType    string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUpload creates an asset for a file that is about to be uploaded. The
// title defaults to the file name until the upload is committed.
func NewUpload(fileName string, fileSize int64, mimeType string, defaultPrice decimal.Decimal) (*Asset, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, ErrTitleRequired
	}
	if defaultPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	now := time.Now().UTC()
	return &Asset{
		title:     fileName,
		price:     defaultPrice,
		status:    StatusUploading,
		provider:  ProviderHLS,
		fileName:  fileName,
		fileSize:  fileSize,
		mimeType:  mimeType,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewCatalogEntry creates an asset that is already playable, as loaded from
// a seed catalog.
func NewCatalogEntry(title, description string, price decimal.Decimal, provider Provider, youtubeID string, tags []string) (*Asset, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("invalid asset provider: %s", provider)
	}
	if provider == ProviderYouTube && youtubeID == "" {
		return nil, ErrYouTubeIDMissing
	}
	now := time.Now().UTC()
	return &Asset{
		title:       title,
		description: description,
		price:       price,
		status:      StatusReady,
		provider:    provider,
		youtubeID:   youtubeID,
		tags:        tags,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructAsset reconstructs an asset from persistence
func ReconstructAsset(
	id uint64,
	title, description string,
	price decimal.Decimal,
	status Status,
	provider Provider,
	youtubeID string,
	tags []string,
	fileName string,
	fileSize int64,
	mimeType string,
	createdAt, updatedAt time.Time,
) (*Asset, error) {
	if id == 0 {
		return nil, fmt.Errorf("asset ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid asset status: %s", status)
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("invalid asset provider: %s", provider)
	}
	return &Asset{
		id:          id,
		title:       title,
		description: description,
		price:       price,
		status:      status,
		provider:    provider,
		youtubeID:   youtubeID,
		tags:        tags,
		fileName:    fileName,
		fileSize:    fileSize,
		mimeType:    mimeType,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (a *Asset) ID() uint64             { return a.id }
func (a *Asset) Title() string          { return a.title }
func (a *Asset) Description() string    { return a.description }
func (a *Asset) Price() decimal.Decimal { return a.price }
func (a *Asset) Status() Status         { return a.status }
func (a *Asset) Provider() Provider     { return a.provider }
func (a *Asset) YouTubeID() string      { return a.youtubeID }
func (a *Asset) FileName() string       { return a.fileName }
func (a *Asset) FileSize() int64        { return a.fileSize }
func (a *Asset) MimeType() string       { return a.mimeType }
func (a *Asset) CreatedAt() time.Time   { return a.createdAt }
func (a *Asset) UpdatedAt() time.Time   { return a.updatedAt }

func (a *Asset) Tags() []string {
	out := make([]string, len(a.tags))
	copy(out, a.tags)
	return out
}

// IsReady reports whether the asset can be streamed.
func (a *Asset) IsReady() bool {
	return a.status == StatusReady
}

// SetID sets the asset ID after persistence
func (a *Asset) SetID(id uint64) error {
	if a.id != 0 {
		return fmt.Errorf("asset ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("asset ID cannot be zero")
	}
	a.id = id
	return nil
}

// Commit applies the publishing metadata and moves an uploaded asset into
// processing.
func (a *Asset) Commit(title, description string, price decimal.Decimal, tags []string) error {
	if a.status != StatusUploading {
		return ErrInvalidStatusTransition(a.status, StatusProcessing)
	}
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	a.title = title
	a.description = description
	a.price = price
	a.tags = tags
	a.status = StatusProcessing
	a.updatedAt = time.Now().UTC()
	return nil
}

func (a *Asset) MarkReady() error {
	if a.status != StatusProcessing {
		return ErrInvalidStatusTransition(a.status, StatusReady)
	}
	a.status = StatusReady
	a.updatedAt = time.Now().UTC()
	return nil
}

func (a *Asset) MarkFailed() error {
	if a.status == StatusReady {
		return ErrInvalidStatusTransition(a.status, StatusFailed)
	}
	a.status = StatusFailed
	a.updatedAt = time.Now().UTC()
	return nil
}
