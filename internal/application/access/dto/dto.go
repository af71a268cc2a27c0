package dto

import (
	"time"

	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/domain/payment"
)

type GrantDTO struct {
	UserID         string     `json:"userId"`
	AssetID        uint64     `json:"assetId"`
	GrantedAt      time.Time  `json:"grantedAt"`
	TransactionID  *string    `json:"transactionId,omitempty"`
	Source         string     `json:"source"`
	LedgerSynced   bool       `json:"ledgerSynced"`
	LedgerSyncedAt *time.Time `json:"ledgerSyncedAt,omitempty"`
}

func ToGrantDTO(g *access.Grant) *GrantDTO {
	if g == nil {
		return nil
	}
	return &GrantDTO{
		UserID:         g.UserID(),
		AssetID:        g.AssetID(),
		GrantedAt:      g.GrantedAt(),
		TransactionID:  g.TransactionID(),
		Source:         g.Source().String(),
		LedgerSynced:   g.LedgerSynced(),
		LedgerSyncedAt: g.LedgerSyncedAt(),
	}
}

func ToGrantDTOs(grants []*access.Grant) []*GrantDTO {
	out := make([]*GrantDTO, 0, len(grants))
	for _, g := range grants {
		out = append(out, ToGrantDTO(g))
	}
	return out
}

// PaymentDTO is the confirmation returned after a payment grants access.
type PaymentDTO struct {
	AssetID       uint64    `json:"assetId"`
	UserID        string    `json:"userId"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

func ToPaymentDTO(r *payment.Record, userID string) *PaymentDTO {
	return &PaymentDTO{
		AssetID:       r.AssetID,
		UserID:        userID,
		Amount:        r.Amount.InexactFloat64(),
		TransactionID: r.TransactionID,
		Timestamp:     r.VerifiedAt,
	}
}

// PurchaseDTO is one line of a user's purchase history.
type PurchaseDTO struct {
	AssetID       uint64    `json:"assetId"`
	Title         string    `json:"title,omitempty"`
	Price         float64   `json:"price"`
	TransactionID *string   `json:"transactionId,omitempty"`
	GrantedAt     time.Time `json:"grantedAt"`
	Source        string    `json:"source"`
}

type UserHistoryDTO struct {
	UserID         string         `json:"userId"`
	Purchases      []*PurchaseDTO `json:"purchases"`
	TotalPurchases int            `json:"totalPurchases"`
	TotalSpent     float64        `json:"totalSpent"`
}
