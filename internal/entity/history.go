package entity

// HistoryItem is one past judgment as the history store persists it.
type HistoryItem struct {
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"` // ISO 8601 (RFC 3339)
	Input     PropertyInput    `json:"input"`
	Result    PredictionResult `json:"result"`
}
