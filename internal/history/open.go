package history

import (
	"context"
	"log/slog"

	"github.com/na2kera/ai-rent-navi/internal/common"
)

// Open builds the history store named by the configuration.
func Open(ctx context.Context, cfg common.HistoryConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "slotfile":
		return NewSlotStore(cfg.SlotPath, cfg.MaxItems, logger), nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "./ai-rent-navi-history.db"
		}
		store, err := NewSQLStore(ctx, "sqlite", dsn, cfg.MaxItems, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := NewSQLStore(ctx, "pgx", cfg.DSN, cfg.MaxItems, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unknown history driver: "+cfg.Driver, common.ErrInvalidInput)
	}
}
