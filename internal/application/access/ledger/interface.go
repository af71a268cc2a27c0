// Package ledger defines the client of the on-chain authorization ledger.
package ledger

import "context"

// Ledger wraps an external contract mapping (user, asset) to a boolean.
//
// No method returns an error. Reads fail closed (false) and writes report
// false on any failure, including an unconfigured client; implementations
// log the cause. Writes are bounded by the configured confirmation timeout.
type Ledger interface {
	CheckAccess(ctx context.Context, userID string, assetID uint64) bool
	// GrantAccess checks first and returns true without a transaction when
	// access is already recorded.
	GrantAccess(ctx context.Context, userID string, assetID uint64) bool
	// GrantAccessBatch submits one transaction for all users and reports a
	// single result for the batch.
	GrantAccessBatch(ctx context.Context, userIDs []string, assetID uint64) bool
	RevokeAccess(ctx context.Context, userID string, assetID uint64) bool
	IsConfigured() bool
	NetworkInfo() NetworkInfo
}

// NetworkInfo describes the ledger endpoint for health reporting.
type NetworkInfo struct {
	Provider        string `json:"provider"`
	RPCURL          string `json:"rpcUrl"`
	ChainID         int64  `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	IsConfigured    bool   `json:"isConfigured"`
}
