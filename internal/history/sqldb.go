package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS judgement_history (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
)`

// SQLStore keeps the history in a relational table, one row per judgement
// with the full item serialized as a JSON payload column. It works against
// both the sqlite and the pgx driver; statements are written with ? markers
// and rebound to $N placeholders for postgres.
type SQLStore struct {
	db       *sql.DB
	max      int
	postgres bool
	logger   *slog.Logger
	now      func() time.Time
}

func NewSQLStore(ctx context.Context, driver, dsn string, max int, logger *slog.Logger) (*SQLStore, error) {
	if max <= 0 {
		max = DefaultMaxItems
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.NewAppError("HISTORY_OPEN", "failed to open history database", errors.Join(common.ErrStorage, err))
	}
	s := &SQLStore{db: db, max: max, postgres: driver == "pgx", logger: logger, now: time.Now}
	if _, err := db.ExecContext(ctx, createHistoryTable); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("HISTORY_MIGRATE", "failed to prepare history table", errors.Join(common.ErrStorage, err))
	}
	return s, nil
}

func (s *SQLStore) Append(ctx context.Context, input entity.PropertyInput, result entity.PredictionResult) (entity.HistoryItem, error) {
	item := newItem(input, result, s.now())
	payload, err := json.Marshal(item)
	if err != nil {
		return entity.HistoryItem{}, common.NewAppError("HISTORY_ENCODE", "failed to encode history item", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.HistoryItem{}, common.NewAppError("HISTORY_APPEND", "failed to store history item", errors.Join(common.ErrStorage, err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO judgement_history (id, created_at, payload) VALUES (?, ?, ?)`),
		item.ID, item.Timestamp, string(payload)); err != nil {
		return entity.HistoryItem{}, common.NewAppError("HISTORY_APPEND", "failed to store history item", errors.Join(common.ErrStorage, err))
	}

	// evict beyond the cap, oldest first
	if _, err := tx.ExecContext(ctx, s.rebind(`
		DELETE FROM judgement_history WHERE id NOT IN (
			SELECT id FROM judgement_history ORDER BY created_at DESC, id DESC LIMIT ?
		)`), s.max); err != nil {
		return entity.HistoryItem{}, common.NewAppError("HISTORY_EVICT", "failed to trim history", errors.Join(common.ErrStorage, err))
	}

	if err := tx.Commit(); err != nil {
		return entity.HistoryItem{}, common.NewAppError("HISTORY_APPEND", "failed to store history item", errors.Join(common.ErrStorage, err))
	}
	s.logger.Info("history.append", "id", item.ID)
	return item, nil
}

func (s *SQLStore) List(ctx context.Context) ([]entity.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM judgement_history ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, common.NewAppError("HISTORY_LIST", "failed to read history", errors.Join(common.ErrStorage, err))
	}
	defer rows.Close()

	var items []entity.HistoryItem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, common.NewAppError("HISTORY_LIST", "failed to read history", errors.Join(common.ErrStorage, err))
		}
		var item entity.HistoryItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			s.logger.Warn("history.corrupt_row", "error", err)
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("HISTORY_LIST", "failed to read history", errors.Join(common.ErrStorage, err))
	}
	return items, nil
}

func (s *SQLStore) DeleteOne(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM judgement_history WHERE id = ?`), id); err != nil {
		return common.NewAppError("HISTORY_DELETE", "failed to delete history item", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (s *SQLStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM judgement_history`); err != nil {
		return common.NewAppError("HISTORY_CLEAR", "failed to clear history", errors.Join(common.ErrStorage, err))
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
