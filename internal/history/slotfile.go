package history

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/na2kera/ai-rent-navi/internal/entity"
)

// SlotStore persists the history as one JSON array in a single named file,
// mirroring the storage slot of the original browser app. Writes go through
// a temp file and rename so a crash can never leave a half-written slot.
type SlotStore struct {
	path   string
	max    int
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

func NewSlotStore(path string, max int, logger *slog.Logger) *SlotStore {
	if max <= 0 {
		max = DefaultMaxItems
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotStore{path: path, max: max, logger: logger, now: time.Now}
}

func (s *SlotStore) Append(ctx context.Context, input entity.PropertyInput, result entity.PredictionResult) (entity.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := newItem(input, result, s.now())
	items := s.read()
	items = append([]entity.HistoryItem{item}, items...)
	if len(items) > s.max {
		items = items[:s.max]
	}
	if err := s.write(items); err != nil {
		return entity.HistoryItem{}, err
	}
	s.logger.Info("history.append", "id", item.ID, "count", len(items))
	return item, nil
}

func (s *SlotStore) List(ctx context.Context) ([]entity.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *SlotStore) DeleteOne(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil // unknown id: no-op
	}
	return s.write(kept)
}

func (s *SlotStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *SlotStore) Close() error { return nil }

// read loads the slot. Absent or corrupt content is treated as an empty
// history: logged, never surfaced as a failure.
func (s *SlotStore) read() []entity.HistoryItem {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("history.read_error", "path", s.path, "error", err)
		}
		return nil
	}
	var items []entity.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("history.corrupt_slot", "path", s.path, "error", err)
		return nil
	}
	return items
}

func (s *SlotStore) write(items []entity.HistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
