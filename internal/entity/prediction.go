package entity

// ReasonableRange is the inclusive rent band the model considers
// market-appropriate, in yen.
type ReasonableRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PredictionResult carries the processed model verdict for one judgment.
// Amounts are yen; created once per prediction call and never mutated.
type PredictionResult struct {
	PredictedRent   int             `json:"predicted_rent"`
	ReasonableRange ReasonableRange `json:"reasonable_range"`
	PriceEvaluation int             `json:"price_evaluation"`
	Difference      int             `json:"difference"` // input rent − predicted rent
	IsReasonable    bool            `json:"is_reasonable"`
	Message         string          `json:"message"`
}
