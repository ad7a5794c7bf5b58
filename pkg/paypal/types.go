package paypal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	IntentCapture   = "CAPTURE"
	CurrencyUSD     = "USD"
	StatusCompleted = "COMPLETED"
)

// TokenResponse is the client-credentials exchange payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PurchaseUnitRequest struct {
	Amount Amount `json:"amount"`
}

// CreateOrderRequest is the Orders v2 create body.
type CreateOrderRequest struct {
	Intent        string                `json:"intent"`
	PurchaseUnits []PurchaseUnitRequest `json:"purchase_units"`
}

// OrderCreateResponse keeps the fields the orchestrator reads plus the
// verbatim body, which is handed back to the browser widget.
type OrderCreateResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

type Payer struct {
	EmailAddress string `json:"email_address"`
}

type Capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount Amount `json:"amount"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	Payments Payments `json:"payments"`
}

// CaptureResponse is the Orders v2 capture payload.
type CaptureResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Payer         Payer           `json:"payer"`
	PurchaseUnits []PurchaseUnit  `json:"purchase_units"`
	Raw           json.RawMessage `json:"-"`
}

// Completed reports whether the provider finalized the payment.
func (c *CaptureResponse) Completed() bool {
	return c != nil && c.Status == StatusCompleted
}

// CapturedAmount is purchase_units[0].payments.captures[0].amount.value.
func (c *CaptureResponse) CapturedAmount() (string, bool) {
	if c == nil || len(c.PurchaseUnits) == 0 || len(c.PurchaseUnits[0].Payments.Captures) == 0 {
		return "", false
	}
	value := strings.TrimSpace(c.PurchaseUnits[0].Payments.Captures[0].Amount.Value)
	return value, value != ""
}

func protocolError(op string, cause error) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeProviderProtocol, cause, fmt.Sprintf("paypal %s returned an unexpected payload", op))
}

func decodeObject(op string, body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return protocolError(op, fmt.Errorf("expected a JSON object, got %q", truncate(trimmed, 64)))
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return protocolError(op, err)
	}
	return nil
}

func parseTokenResponse(body []byte) (*TokenResponse, error) {
	var out TokenResponse
	if err := decodeObject(opToken, body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, protocolError(opToken, fmt.Errorf("access_token missing"))
	}
	if out.ExpiresIn <= 0 {
		return nil, protocolError(opToken, fmt.Errorf("expires_in must be positive, got %d", out.ExpiresIn))
	}
	return &out, nil
}

func parseOrderCreateResponse(body []byte) (*OrderCreateResponse, error) {
	var out OrderCreateResponse
	if err := decodeObject(opCreateOrder, body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, protocolError(opCreateOrder, fmt.Errorf("order id missing"))
	}
	out.Raw = append(json.RawMessage(nil), bytes.TrimSpace(body)...)
	return &out, nil
}

// parseCaptureResponse requires a status; a COMPLETED capture must also carry
// a decimal captured amount since that becomes the persisted total.
func parseCaptureResponse(body []byte) (*CaptureResponse, error) {
	var out CaptureResponse
	if err := decodeObject(opCaptureOrder, body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Status) == "" {
		return nil, protocolError(opCaptureOrder, fmt.Errorf("status missing"))
	}
	out.Raw = append(json.RawMessage(nil), bytes.TrimSpace(body)...)
	if !out.Completed() {
		return &out, nil
	}
	value, ok := out.CapturedAmount()
	if !ok {
		return nil, protocolError(opCaptureOrder, fmt.Errorf("captured amount missing"))
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return nil, protocolError(opCaptureOrder, fmt.Errorf("captured amount %q: %w", value, err))
	}
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
