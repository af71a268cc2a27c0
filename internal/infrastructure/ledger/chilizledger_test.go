package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

const user = "0x00000000000000000000000000000000000000aB"

type fakeContract struct {
	mu        sync.Mutex
	access    map[common.Address]map[uint64]bool
	calls     int32
	sent      []string
	callErr   error
	sendErr   error
	callDelay time.Duration
}

func newFakeContract() *fakeContract {
	return &fakeContract{access: make(map[common.Address]map[uint64]bool)}
}

func (f *fakeContract) Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error {
	atomic.AddInt32(&f.calls, 1)
	if f.callDelay > 0 {
		time.Sleep(f.callDelay)
	}
	if opts.Context != nil && opts.Context.Err() != nil {
		return opts.Context.Err()
	}
	if f.callErr != nil {
		return f.callErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	addr := params[0].(common.Address)
	id := params[1].(*big.Int).Uint64()
	*results = []interface{}{f.access[addr][id]}
	return nil
}

func (f *fakeContract) Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, method)

	id := params[1].(*big.Int).Uint64()
	switch method {
	case "grantAccess":
		f.set(params[0].(common.Address), id, true)
	case "grantAccessBatch":
		for _, addr := range params[0].([]common.Address) {
			f.set(addr, id, true)
		}
	case "revokeAccess":
		f.set(params[0].(common.Address), id, false)
	}
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(f.sent))}), nil
}

func (f *fakeContract) set(addr common.Address, id uint64, v bool) {
	if f.access[addr] == nil {
		f.access[addr] = make(map[uint64]bool)
	}
	f.access[addr][id] = v
}

func (f *fakeContract) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestLedger(contract *fakeContract, mined minedFunc) *ChilizLedger {
	if mined == nil {
		mined = func(context.Context, *types.Transaction) (bool, error) { return true, nil }
	}
	return &ChilizLedger{
		cfg:            config.LedgerConfig{Provider: "chiliz", ChainID: 88882},
		contract:       contract,
		transactor:     &bind.TransactOpts{},
		waitMined:      mined,
		confirmTimeout: time.Second,
		logger:         logger.NewNop(),
	}
}

func TestChilizLedger_Unconfigured(t *testing.T) {
	l, err := NewChilizLedger(context.Background(), config.LedgerConfig{RPCURL: "https://spicy-rpc.chiliz.com"}, logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	assert.False(t, l.IsConfigured())
	assert.False(t, l.CheckAccess(ctx, user, 1))
	assert.False(t, l.GrantAccess(ctx, user, 1))
	assert.False(t, l.GrantAccessBatch(ctx, []string{user}, 1))
	assert.False(t, l.RevokeAccess(ctx, user, 1))
	assert.False(t, l.NetworkInfo().IsConfigured)
	l.Close()
}

func TestChilizLedger_GrantCheckRevoke(t *testing.T) {
	contract := newFakeContract()
	l := newTestLedger(contract, nil)
	ctx := context.Background()

	assert.False(t, l.CheckAccess(ctx, user, 42))
	assert.True(t, l.GrantAccess(ctx, user, 42))
	assert.True(t, l.CheckAccess(ctx, user, 42))

	// already granted: no second transaction
	assert.True(t, l.GrantAccess(ctx, user, 42))
	assert.Equal(t, []string{"grantAccess"}, contract.methods())

	assert.True(t, l.RevokeAccess(ctx, user, 42))
	assert.False(t, l.CheckAccess(ctx, user, 42))
}

func TestChilizLedger_BatchIsOneTransaction(t *testing.T) {
	contract := newFakeContract()
	l := newTestLedger(contract, nil)
	other := "0x00000000000000000000000000000000000000cD"

	assert.True(t, l.GrantAccessBatch(context.Background(), []string{user, other}, 7))
	assert.Equal(t, []string{"grantAccessBatch"}, contract.methods())
	assert.True(t, l.CheckAccess(context.Background(), other, 7))

	assert.False(t, l.GrantAccessBatch(context.Background(), []string{user, "not-an-address"}, 7))
	assert.False(t, l.GrantAccessBatch(context.Background(), nil, 7))
}

func TestChilizLedger_FailuresReportFalse(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		l := newTestLedger(newFakeContract(), nil)
		assert.False(t, l.CheckAccess(context.Background(), "alice", 1))
		assert.False(t, l.GrantAccess(context.Background(), "alice", 1))
	})

	t.Run("rpc error", func(t *testing.T) {
		contract := newFakeContract()
		contract.callErr = errors.New("connection refused")
		l := newTestLedger(contract, nil)
		assert.False(t, l.CheckAccess(context.Background(), user, 1))
		assert.False(t, l.GrantAccess(context.Background(), user, 1))
	})

	t.Run("submit error", func(t *testing.T) {
		contract := newFakeContract()
		contract.sendErr = errors.New("insufficient funds")
		l := newTestLedger(contract, nil)
		assert.False(t, l.GrantAccess(context.Background(), user, 1))
	})

	t.Run("reverted", func(t *testing.T) {
		l := newTestLedger(newFakeContract(), func(context.Context, *types.Transaction) (bool, error) { return false, nil })
		assert.False(t, l.RevokeAccess(context.Background(), user, 1))
	})

	t.Run("confirmation timeout", func(t *testing.T) {
		l := newTestLedger(newFakeContract(), func(ctx context.Context, _ *types.Transaction) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})
		l.confirmTimeout = 10 * time.Millisecond
		assert.False(t, l.GrantAccess(context.Background(), user, 1))
	})
}

func TestChilizLedger_ConcurrentChecksShareOneCall(t *testing.T) {
	contract := newFakeContract()
	contract.callDelay = 50 * time.Millisecond
	l := newTestLedger(contract, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.CheckAccess(context.Background(), user, 3)
		}()
	}
	wg.Wait()

	assert.Less(t, atomic.LoadInt32(&contract.calls), int32(8))
}

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	assert.True(t, l.IsConfigured())
	assert.False(t, l.CheckAccess(ctx, "alice", 1))
	assert.True(t, l.GrantAccessBatch(ctx, []string{"alice", "bob"}, 1))
	assert.True(t, l.CheckAccess(ctx, "bob", 1))
	assert.True(t, l.RevokeAccess(ctx, "bob", 1))
	assert.False(t, l.CheckAccess(ctx, "bob", 1))
}

func TestNew_SelectsProvider(t *testing.T) {
	l, closeFn, err := New(context.Background(), config.LedgerConfig{Provider: "memory"}, logger.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "memory", l.NetworkInfo().Provider)

	l, _, err = New(context.Background(), config.LedgerConfig{Provider: "none"}, logger.NewNop())
	require.NoError(t, err)
	assert.False(t, l.IsConfigured())

	_, _, err = New(context.Background(), config.LedgerConfig{Provider: "solana"}, logger.NewNop())
	assert.Error(t, err)
}

func TestChilizLedger_SharedCheckSurvivesCancelledLeader(t *testing.T) {
	contract := newFakeContract()
	contract.callDelay = 50 * time.Millisecond
	contract.set(common.HexToAddress(user), 3, true)
	l := newTestLedger(contract, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.CheckAccess(cancelled, user, 3)
	}()
	time.Sleep(10 * time.Millisecond)

	assert.True(t, l.CheckAccess(context.Background(), user, 3))
	<-done
}
