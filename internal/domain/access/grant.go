package access

import (
	"fmt"
	"strings"
	"time"
)

// Grant records that a user may stream an asset. There is at most one grant
// per (user, asset); granting again replaces the timestamp and transaction.
type Grant struct {
	id             uint
	userID         string // wallet address, compared byte for byte
	assetID        uint64
	source         Source
	transactionID  *string // nil for administrative grants
	grantedAt      time.Time
	ledgerSynced   bool
	ledgerSyncedAt *time.Time
	ledgerAttempts int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewGrant creates a grant timestamped now. An empty transactionID is stored as nil.
func NewGrant(userID string, assetID uint64, source Source, transactionID string) (*Grant, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if assetID == 0 {
		return nil, ErrAssetIDRequired
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}

	now := time.Now().UTC()
	g := &Grant{
		userID:    userID,
		assetID:   assetID,
		source:    source,
		grantedAt: now,
		createdAt: now,
		updatedAt: now,
	}
	if transactionID != "" {
		tx := transactionID
		g.transactionID = &tx
	}
	return g, nil
}

// ReconstructGrant reconstructs a grant from persistence
func ReconstructGrant(
	id uint,
	userID string,
	assetID uint64,
	source Source,
	transactionID *string,
	grantedAt time.Time,
	ledgerSynced bool,
	ledgerSyncedAt *time.Time,
	ledgerAttempts int,
	createdAt, updatedAt time.Time,
) (*Grant, error) {
	if id == 0 {
		return nil, fmt.Errorf("grant ID cannot be zero")
	}
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if assetID == 0 {
		return nil, ErrAssetIDRequired
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}

	return &Grant{
		id:             id,
		userID:         userID,
		assetID:        assetID,
		source:         source,
		transactionID:  transactionID,
		grantedAt:      grantedAt,
		ledgerSynced:   ledgerSynced,
		ledgerSyncedAt: ledgerSyncedAt,
		ledgerAttempts: ledgerAttempts,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (g *Grant) ID() uint                   { return g.id }
func (g *Grant) UserID() string             { return g.userID }
func (g *Grant) AssetID() uint64            { return g.assetID }
func (g *Grant) Source() Source             { return g.source }
func (g *Grant) GrantedAt() time.Time       { return g.grantedAt }
func (g *Grant) LedgerSynced() bool         { return g.ledgerSynced }
func (g *Grant) LedgerSyncedAt() *time.Time { return g.ledgerSyncedAt }
func (g *Grant) LedgerAttempts() int        { return g.ledgerAttempts }
func (g *Grant) CreatedAt() time.Time       { return g.createdAt }
func (g *Grant) UpdatedAt() time.Time       { return g.updatedAt }

// TransactionID returns the settling transaction, or nil for administrative grants.
func (g *Grant) TransactionID() *string {
	return g.transactionID
}

// TransactionIDValue returns the transaction id or an empty string.
func (g *Grant) TransactionIDValue() string {
	if g.transactionID == nil {
		return ""
	}
	return *g.transactionID
}

// Key returns the (user, asset) identity of the grant.
func (g *Grant) Key() Key {
	return Key{UserID: g.userID, AssetID: g.assetID}
}

// SetID sets the grant ID after persistence
func (g *Grant) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("grant ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("grant ID cannot be zero")
	}
	g.id = id
	return nil
}

// MarkLedgerSynced records that the ledger confirmed this grant.
func (g *Grant) MarkLedgerSynced(at time.Time) {
	g.ledgerSynced = true
	g.ledgerSyncedAt = &at
	g.updatedAt = at
}

// RecordLedgerFailure counts an unsuccessful ledger write.
func (g *Grant) RecordLedgerFailure() {
	g.ledgerAttempts++
	g.updatedAt = time.Now().UTC()
}

// Key identifies a grant.
type Key struct {
	UserID  string
	AssetID uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.UserID, k.AssetID)
}
