package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/extract"
)

// Client implements extract.FieldExtractor on top of the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(ctx context.Context, cfg common.ExtractConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for image extraction", common.ErrFeatureOff)
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     logger,
	}, nil
}

// ExtractFields sends the image with the extraction prompt, pulls the JSON
// object out of the reply, validates it against the property schema and
// sanitizes out-of-range values. A best-effort partial result is normal;
// only malformed replies are errors.
func (c *Client) ExtractFields(ctx context.Context, req extract.ExtractRequest) (extract.PropertyFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if len(req.ImageData) == 0 {
		return extract.PropertyFields{}, nil, common.NewAppError("EXTRACT_EMPTY_IMAGE", "image payload is empty", common.ErrInvalidInput)
	}
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	c.log.Info("extract.start",
		"req_id", rid,
		"model", c.model,
		"image_bytes", len(req.ImageData),
		"mime_type", mimeType,
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(extract.BuildPrompt()),
			genai.NewPartFromBytes(req.ImageData, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		c.log.Error("extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return extract.PropertyFields{}, nil, common.TransportError("image extraction request failed", err)
	}

	text := resp.Text()
	rawJSON, err := firstJSONObject(text)
	if err != nil {
		c.log.Error("extract.no_json", "req_id", rid, "reply_len", len(text))
		return extract.PropertyFields{}, []byte(text), err
	}

	schema := extract.BuildPropertyJSONSchema()
	cleaned, droppedKeys, err := extract.SanitizePropertyJSON(rawJSON, c.log)
	if err != nil {
		return extract.PropertyFields{}, rawJSON, fmt.Errorf("sanitize extraction: %w", err)
	}
	if err := extract.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("extract.schema_validation_failed", "req_id", rid, "error", err, "content", string(cleaned))
		return extract.PropertyFields{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	var out extract.PropertyFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return extract.PropertyFields{}, cleaned, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("extract.ok",
		"req_id", rid,
		"dropped", len(droppedKeys),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

// firstJSONObject extracts the outermost {...} from a model reply that may
// be wrapped in prose or a markdown fence.
func firstJSONObject(s string) ([]byte, error) {
	open := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if open == -1 || end == -1 || end < open {
		return nil, fmt.Errorf("no JSON object in model reply")
	}
	return []byte(s[open : end+1]), nil
}
