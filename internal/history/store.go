package history

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/na2kera/ai-rent-navi/internal/entity"
)

// DefaultMaxItems caps the retained history; oldest entries are evicted.
const DefaultMaxItems = 50

// Store owns the persisted judgment history, ordered most-recent-first.
// Mutations are atomic with respect to a single caller; there is no
// cross-process coordination (single-user assumption).
type Store interface {
	// Append synthesizes an id, stamps the current time, prepends the item
	// and truncates the collection to its cap.
	Append(ctx context.Context, input entity.PropertyInput, result entity.PredictionResult) (entity.HistoryItem, error)
	// List returns the full collection. A corrupt or absent backing store
	// reads as empty, never as an error.
	List(ctx context.Context) ([]entity.HistoryItem, error)
	// DeleteOne removes the matching entry; deleting an unknown id is a no-op.
	DeleteOne(ctx context.Context, id string) error
	// ClearAll empties the collection.
	ClearAll(ctx context.Context) error
	Close() error
}

// Restore returns the stored input unchanged for re-seeding the form.
func Restore(item entity.HistoryItem) entity.PropertyInput {
	return item.Input
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a time-derived unique id: millisecond timestamp plus a
// short random suffix, so ids sort roughly by creation time.
func NewID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + string(suffix)
}

func newItem(input entity.PropertyInput, result entity.PredictionResult, now time.Time) entity.HistoryItem {
	return entity.HistoryItem{
		ID:        NewID(now),
		Timestamp: now.UTC().Format(time.RFC3339),
		Input:     input,
		Result:    result,
	}
}
