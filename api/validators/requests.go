package validators

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	msgInvalidProductID   = "Invalid productId"
	msgInvalidQuantity    = "Quantity must be a positive integer"
	msgInvalidOrderID     = "Invalid orderID"
	msgInvalidCredentials = "Invalid username or password format"
)

// DecodeCartItem reads {"productId": string, "quantity": integer}. A
// quantity sent as a string or with a fractional part is rejected.
func DecodeCartItem(r *http.Request) (cart.AddItemInput, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return cart.AddItemInput{}, err
	}

	productID, ok := nonEmptyString(fields["productId"])
	if !ok {
		return cart.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidProductID)
	}

	quantity, ok := positiveInteger(fields["quantity"])
	if !ok {
		return cart.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidQuantity)
	}
	return cart.AddItemInput{ProductID: productID, Quantity: quantity}, nil
}

// DecodeCaptureOrder returns the provider order id from {"orderID": string}.
func DecodeCaptureOrder(r *http.Request) (string, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return "", err
	}
	orderID, ok := nonEmptyString(fields["orderID"])
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, msgInvalidOrderID)
	}
	return orderID, nil
}

type adminCredentialsRequest struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Password string `json:"password" validate:"min=8"`
}

// DecodeAdminCredentials is shared by login and admin setup. Every failure
// carries the same message so callers learn nothing about which field failed.
func DecodeAdminCredentials(r *http.Request) (auth.Credentials, error) {
	raw, err := readBody(r)
	if err != nil {
		return auth.Credentials{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCredentials)
	}
	var req adminCredentialsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return auth.Credentials{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCredentials)
	}
	if err := validate.Struct(req); err != nil {
		return auth.Credentials{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidCredentials)
	}
	return auth.Credentials{Username: req.Username, Password: req.Password}, nil
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, s != ""
}

func positiveInteger(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
