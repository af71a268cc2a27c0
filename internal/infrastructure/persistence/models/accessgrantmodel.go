package models

import (
	"time"

	"github.com/scoutystream/scouty/internal/shared/constants"
)

// AccessGrantModel is the persistence model of the access cache. The
// (user_id, asset_id) pair is unique so a re-grant updates in place.
type AccessGrantModel struct {
	ID             uint    `gorm:"primarykey"`
	UserID         string  `gorm:"not null;size:128;uniqueIndex:idx_user_asset,priority:1"`
	AssetID        uint64  `gorm:"not null;uniqueIndex:idx_user_asset,priority:2;index:idx_asset"`
	Source         string  `gorm:"not null;size:20"`
	TransactionID  *string `gorm:"size:128;index:idx_transaction"`
	GrantedAt      time.Time
	LedgerSynced   bool `gorm:"not null;default:false;index:idx_ledger_pending,priority:1"`
	LedgerSyncedAt *time.Time
	LedgerAttempts int `gorm:"not null;default:0;index:idx_ledger_pending,priority:2"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (AccessGrantModel) TableName() string {
	return constants.TableAccessGrants
}
