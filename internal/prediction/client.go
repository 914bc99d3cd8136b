package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/na2kera/ai-rent-navi/constants"
	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
)

// The wire protocol speaks 10,000-yen units; everything else in this module
// speaks yen. The conversion happens here and only here, symmetrically on
// the request and on the response.
const yenPerWireUnit = 10000

// defaultStationPerson is a model input the form does not collect.
const defaultStationPerson = 50

// MsgCheckInput is shown when the service rejects the payload itself.
const MsgCheckInput = "入力内容をご確認ください"

// request is the subset of property features the prediction service accepts.
type request struct {
	Area          float64 `json:"area"`
	Age           int     `json:"age"`
	Layout        int     `json:"layout"`
	StationPerson int     `json:"station_person"`
	Rent          float64 `json:"rent"` // 10k-yen units
}

type response struct {
	InputConditions json.RawMessage `json:"input_conditions"`
	PredictedRent   float64         `json:"predicted_rent"` // 10k-yen units
	ReasonableRange struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"reasonable_range"`
	PriceEvaluation int `json:"price_evaluation"`
}

// Client calls the remote rent-prediction endpoint. One call per judgment,
// no retries; failures surface immediately.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg common.PredictionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Predict sends the typed input to the prediction service and derives the
// presentation fields from the raw response.
func (c *Client) Predict(ctx context.Context, input entity.PropertyInput) (entity.PredictionResult, error) {
	reqID := uuid.New().String()
	start := time.Now()

	wireRent := float64(input.Rent) / yenPerWireUnit
	if wireRent < 1 {
		wireRent = 1
	}
	payload := request{
		Area:          input.Area,
		Age:           input.Age,
		Layout:        input.Layout,
		StationPerson: defaultStationPerson,
		Rent:          wireRent,
	}

	bs, err := json.Marshal(payload)
	if err != nil {
		return entity.PredictionResult{}, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bs))
	if err != nil {
		return entity.PredictionResult{}, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("predict.request",
		"req_id", reqID,
		"url", c.url,
		"area", input.Area,
		"age", input.Age,
		"layout", input.Layout,
		"rent_wire", wireRent,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("predict.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.PredictionResult{}, common.TransportError(err.Error(), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("predict.body_close_error", "req_id", reqID, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("predict.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return entity.PredictionResult{}, common.NewAppError("PREDICT_REJECTED", MsgCheckInput, common.ErrInvalidInput)
	}
	if resp.StatusCode/100 != 2 {
		return entity.PredictionResult{}, common.TransportError(
			fmt.Sprintf("prediction service returned status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var body response
	if err := json.Unmarshal(raw, &body); err != nil {
		return entity.PredictionResult{}, common.TransportError(fmt.Sprintf("decode prediction response: %v", err), err)
	}

	predictedYen := toYen(body.PredictedRent)
	minYen := toYen(body.ReasonableRange.Min)
	maxYen := toYen(body.ReasonableRange.Max)

	result := entity.PredictionResult{
		PredictedRent:   predictedYen,
		ReasonableRange: entity.ReasonableRange{Min: minYen, Max: maxYen},
		PriceEvaluation: body.PriceEvaluation,
		Difference:      input.Rent - predictedYen,
		IsReasonable:    input.Rent >= minYen && input.Rent <= maxYen,
		Message:         constants.PriceEvaluation(body.PriceEvaluation).Message(),
	}

	c.logger.Info("predict.ok",
		"req_id", reqID,
		"predicted_rent", result.PredictedRent,
		"evaluation", result.PriceEvaluation,
		"reasonable", result.IsReasonable,
	)
	return result, nil
}

func toYen(wire float64) int {
	return int(math.Round(wire * yenPerWireUnit))
}
