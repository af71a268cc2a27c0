// Package ledger implements the on-chain authorization ledger clients.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/singleflight"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

const accessControlABI = `[
	{"type":"function","name":"checkAccess","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"},{"name":"videoId","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"grantAccess","stateMutability":"nonpayable",
	 "inputs":[{"name":"user","type":"address"},{"name":"videoId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"grantAccessBatch","stateMutability":"nonpayable",
	 "inputs":[{"name":"users","type":"address[]"},{"name":"videoId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"revokeAccess","stateMutability":"nonpayable",
	 "inputs":[{"name":"user","type":"address"},{"name":"videoId","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"AccessGranted","anonymous":false,
	 "inputs":[{"name":"user","type":"address","indexed":true},{"name":"videoId","type":"uint256","indexed":true}]},
	{"type":"event","name":"AccessRevoked","anonymous":false,
	 "inputs":[{"name":"user","type":"address","indexed":true},{"name":"videoId","type":"uint256","indexed":true}]}
]`

var errInvalidAddress = errors.New("user id is not a hex address")

// accessContract is the subset of *bind.BoundContract the ledger uses.
type accessContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

// minedFunc waits for tx and reports whether it succeeded.
type minedFunc func(ctx context.Context, tx *types.Transaction) (bool, error)

// ChilizLedger talks to the VideoAccessControl contract on a Chiliz chain.
// A ledger built without a complete configuration answers false to every
// call and never touches the network.
type ChilizLedger struct {
	cfg            config.LedgerConfig
	client         *ethclient.Client
	contract       accessContract
	transactor     *bind.TransactOpts
	waitMined      minedFunc
	confirmTimeout time.Duration
	checks         singleflight.Group
	logger         logger.Interface
}

// NewChilizLedger dials the RPC endpoint when the ledger is configured.
func NewChilizLedger(ctx context.Context, cfg config.LedgerConfig, log logger.Interface) (*ChilizLedger, error) {
	l := &ChilizLedger{
		cfg:            cfg,
		confirmTimeout: cfg.ConfirmTimeout,
		logger:         log.Named("ledger"),
	}
	if l.cfg.Provider == "" {
		l.cfg.Provider = "chiliz"
	}
	if l.confirmTimeout <= 0 {
		l.confirmTimeout = 60 * time.Second
	}

	if !cfg.IsConfigured() {
		l.logger.Warnw("ledger is not configured, access checks fall back to the cache only",
			"rpc_url", cfg.RPCURL,
			"has_contract", cfg.ContractAddress != "",
			"has_private_key", cfg.PrivateKey != "")
		return l, nil
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid ledger contract address %q", cfg.ContractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(accessControlABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse access control ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid ledger private key: %w", err)
	}
	transactor, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger transactor: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger rpc: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	l.client = client
	l.contract = bind.NewBoundContract(address, parsed, client, client, client)
	l.transactor = transactor
	l.waitMined = func(ctx context.Context, tx *types.Transaction) (bool, error) {
		receipt, err := bind.WaitMined(ctx, client, tx)
		if err != nil {
			return false, err
		}
		return receipt.Status == types.ReceiptStatusSuccessful, nil
	}

	l.logger.Infow("ledger client ready",
		"chain_id", cfg.ChainID,
		"contract", address.Hex(),
		"signer", transactor.From.Hex())
	return l, nil
}

func (l *ChilizLedger) IsConfigured() bool {
	return l.contract != nil
}

func (l *ChilizLedger) NetworkInfo() ledger.NetworkInfo {
	return ledger.NetworkInfo{
		Provider:        l.cfg.Provider,
		RPCURL:          l.cfg.RPCURL,
		ChainID:         l.cfg.ChainID,
		ContractAddress: l.cfg.ContractAddress,
		IsConfigured:    l.IsConfigured(),
	}
}

// CheckAccess collapses concurrent lookups for the same pair into one call.
func (l *ChilizLedger) CheckAccess(ctx context.Context, userID string, assetID uint64) bool {
	if !l.IsConfigured() {
		return false
	}

	// waiters share the lookup, so it must not die with the caller that started it
	shared := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%s:%d", userID, assetID)
	v, err, _ := l.checks.Do(key, func() (interface{}, error) {
		return l.checkAccess(shared, userID, assetID)
	})
	if err != nil {
		l.logger.Warnw("ledger access check failed", "user_id", userID, "asset_id", assetID, "error", err)
		return false
	}
	return v.(bool)
}

func (l *ChilizLedger) checkAccess(ctx context.Context, userID string, assetID uint64) (bool, error) {
	user, err := toAddress(userID)
	if err != nil {
		return false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, l.confirmTimeout)
	defer cancel()

	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: callCtx}, &out, "checkAccess", user, new(big.Int).SetUint64(assetID)); err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("checkAccess returned %d values", len(out))
	}
	granted, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("checkAccess returned %T", out[0])
	}
	return granted, nil
}

func (l *ChilizLedger) GrantAccess(ctx context.Context, userID string, assetID uint64) bool {
	if !l.IsConfigured() {
		return false
	}

	granted, err := l.checkAccess(ctx, userID, assetID)
	if err != nil {
		l.logger.Warnw("ledger pre-grant check failed", "user_id", userID, "asset_id", assetID, "error", err)
		return false
	}
	if granted {
		l.logger.Debugw("ledger already records access", "user_id", userID, "asset_id", assetID)
		return true
	}

	user, _ := toAddress(userID)
	return l.send(ctx, "grantAccess", []interface{}{user, new(big.Int).SetUint64(assetID)},
		"user_id", userID, "asset_id", assetID)
}

func (l *ChilizLedger) GrantAccessBatch(ctx context.Context, userIDs []string, assetID uint64) bool {
	if !l.IsConfigured() || len(userIDs) == 0 {
		return false
	}

	users := make([]common.Address, 0, len(userIDs))
	for _, id := range userIDs {
		addr, err := toAddress(id)
		if err != nil {
			l.logger.Warnw("ledger batch grant rejected", "user_id", id, "asset_id", assetID, "error", err)
			return false
		}
		users = append(users, addr)
	}

	return l.send(ctx, "grantAccessBatch", []interface{}{users, new(big.Int).SetUint64(assetID)},
		"users", len(users), "asset_id", assetID)
}

func (l *ChilizLedger) RevokeAccess(ctx context.Context, userID string, assetID uint64) bool {
	if !l.IsConfigured() {
		return false
	}

	user, err := toAddress(userID)
	if err != nil {
		l.logger.Warnw("ledger revoke rejected", "user_id", userID, "asset_id", assetID, "error", err)
		return false
	}
	return l.send(ctx, "revokeAccess", []interface{}{user, new(big.Int).SetUint64(assetID)},
		"user_id", userID, "asset_id", assetID)
}

// send submits a transaction and waits for it to be mined within the
// confirmation timeout.
func (l *ChilizLedger) send(ctx context.Context, method string, params []interface{}, keysAndValues ...interface{}) bool {
	txCtx, cancel := context.WithTimeout(ctx, l.confirmTimeout)
	defer cancel()

	opts := *l.transactor
	opts.Context = txCtx

	log := l.logger.With(keysAndValues...).With("method", method)

	tx, err := l.contract.Transact(&opts, method, params...)
	if err != nil {
		log.Errorw("ledger transaction failed to submit", "error", err)
		return false
	}

	ok, err := l.waitMined(txCtx, tx)
	if err != nil {
		log.Errorw("ledger transaction not confirmed", "tx_hash", tx.Hash().Hex(), "error", err)
		return false
	}
	if !ok {
		log.Errorw("ledger transaction reverted", "tx_hash", tx.Hash().Hex())
		return false
	}

	log.Infow("ledger transaction confirmed", "tx_hash", tx.Hash().Hex())
	return true
}

// Close releases the RPC connection.
func (l *ChilizLedger) Close() {
	if l.client != nil {
		l.client.Close()
	}
}

func toAddress(userID string) (common.Address, error) {
	if !common.IsHexAddress(userID) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, userID)
	}
	return common.HexToAddress(userID), nil
}
