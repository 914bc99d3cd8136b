package address

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/na2kera/ai-rent-navi/internal/common"
)

// User-facing messages for the postal auto-fill field.
const (
	MsgInvalidPostalCode = "郵便番号は7桁の半角数字で入力してください。"
	MsgAddressNotFound   = "郵便番号に該当する住所が見つかりませんでした。"
	MsgLookupFailed      = "住所の取得に失敗しました。時間をおいて再度お試しください。"
)

var postalCodePattern = regexp.MustCompile(`^[0-9]{7}$`)

// ValidPostalCode reports whether code may be sent to the lookup service.
// Anything else must be rejected before a single request goes out.
func ValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(code)
}

// Address is one lookup result.
type Address struct {
	Prefecture string `json:"pref_name"`
	City       string `json:"city_name"`
	Town       string `json:"town_name"`
}

// Client performs the two-step token-then-lookup call sequence against the
// external address service. The second call never starts when the first
// fails, and nothing is ever retried.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewClient(cfg common.AddressConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

// Lookup exchanges a 7-digit postal code for its address. The code is
// validated locally first; an invalid code never triggers a network call.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	if !ValidPostalCode(code) {
		return Address{}, common.NewAppError("POSTAL_CODE_INVALID", MsgInvalidPostalCode, common.ErrInvalidInput)
	}

	reqID := uuid.New().String()
	start := time.Now()
	c.logger.Info("address.lookup.start", "req_id", reqID, "postal_code", code)

	token, err := c.fetchToken(ctx, reqID)
	if err != nil {
		c.logger.Error("address.token_error", "req_id", reqID, "error", err)
		return Address{}, err
	}

	addr, err := c.fetchAddress(ctx, reqID, token, code)
	if err != nil {
		c.logger.Error("address.lookup_error", "req_id", reqID, "error", err)
		return Address{}, err
	}

	c.logger.Info("address.lookup.ok",
		"req_id", reqID,
		"prefecture", addr.Prefecture,
		"city", addr.City,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return addr, nil
}

func (c *Client) fetchToken(ctx context.Context, reqID string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", common.TransportError(MsgLookupFailed, err)
	}
	defer closeQuietly(resp.Body, c.logger, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", common.TransportError(fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", common.TransportError(fmt.Sprintf("decode token response: %v", err), err)
	}
	if out.Token == "" {
		return "", common.TransportError("token endpoint returned an empty token", nil)
	}
	return out.Token, nil
}

func (c *Client) fetchAddress(ctx context.Context, reqID, token, code string) (Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/postal/"+code, nil)
	if err != nil {
		return Address{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, common.TransportError(MsgLookupFailed, err)
	}
	defer closeQuietly(resp.Body, c.logger, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return Address{}, common.TransportError(fmt.Sprintf("lookup endpoint returned status %d", resp.StatusCode), nil)
	}

	var out struct {
		Addresses []Address `json:"addresses"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Address{}, common.TransportError(fmt.Sprintf("decode lookup response: %v", err), err)
	}
	if len(out.Addresses) == 0 {
		return Address{}, common.NewAppError("ADDRESS_NOT_FOUND", MsgAddressNotFound, common.ErrNotFound)
	}
	return out.Addresses[0], nil
}

func closeQuietly(body io.ReadCloser, logger *slog.Logger, reqID string) {
	if err := body.Close(); err != nil {
		logger.Warn("address.body_close_error", "req_id", reqID, "error", err)
	}
}
