package constants

import "fmt"

// PriceEvaluation is the ordinal 1–5 the prediction service assigns to the
// input rent relative to its market estimate.
type PriceEvaluation int

const (
	EvalFarBelowMarket PriceEvaluation = 1
	EvalBelowMarket    PriceEvaluation = 2
	EvalMarketRate     PriceEvaluation = 3
	EvalAboveMarket    PriceEvaluation = 4
	EvalFarAboveMarket PriceEvaluation = 5
)

var evaluationMessages = map[PriceEvaluation]string{
	EvalFarBelowMarket: "現在の家賃は相場よりもかなり割安",
	EvalBelowMarket:    "現在の家賃は相場よりも少し安い",
	EvalMarketRate:     "現在の家賃は相場通り",
	EvalAboveMarket:    "現在の家賃は相場よりも少し高い",
	EvalFarAboveMarket: "現在の家賃は相場よりもかなり割高",
}

// EvaluationFallbackMessage is shown for evaluation codes outside 1–5.
const EvaluationFallbackMessage = "価格評価ができません"

// Message returns the verdict text for the evaluation code. Codes outside
// the enumeration map to EvaluationFallbackMessage, never to an empty string.
func (e PriceEvaluation) Message() string {
	if m, ok := evaluationMessages[e]; ok {
		return m
	}
	return EvaluationFallbackMessage
}

// FormatYen renders an amount for display, e.g. 60000 -> "¥60,000".
func FormatYen(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-¥" + s
	}
	return "¥" + s
}
