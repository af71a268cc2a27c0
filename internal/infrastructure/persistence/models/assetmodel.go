package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/scoutystream/scouty/internal/shared/constants"
)

// AssetModel is the persistence model of the asset catalog. Price is kept as
// a decimal string so cents survive every driver.
type AssetModel struct {
	ID          uint64 `gorm:"primarykey"`
	Title       string `gorm:"not null;size:200"`
	Description string `gorm:"type:text"`
	Price       string `gorm:"not null;size:20"`
	Status      string `gorm:"not null;size:20;index:idx_status"`
	Provider    string `gorm:"not null;size:20"`
	YouTubeID   string `gorm:"column:youtube_id;size:32"`
	Tags        datatypes.JSON
	FileName    string `gorm:"size:255"`
	FileSize    int64
	MimeType    string `gorm:"size:100"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (AssetModel) TableName() string {
	return constants.TableAssets
}
