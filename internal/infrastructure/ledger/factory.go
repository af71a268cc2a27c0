package ledger

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/ledger"
	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// New builds the ledger named by cfg.Provider. The returned close function
// is never nil.
func New(ctx context.Context, cfg config.LedgerConfig, log logger.Interface) (ledger.Ledger, func(), error) {
	switch cfg.Provider {
	case "chiliz":
		l, err := NewChilizLedger(ctx, cfg, log)
		if err != nil {
			return nil, func() {}, err
		}
		return l, l.Close, nil
	case "memory":
		return NewMemoryLedger(), func() {}, nil
	case "none", "":
		// an unconfigured chiliz client fails every call closed
		l, _ := NewChilizLedger(ctx, config.LedgerConfig{Provider: "none"}, log)
		return l, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported ledger provider %q", cfg.Provider)
	}
}
