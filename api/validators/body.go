package validators

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const maxJSONBodyBytes = 1 << 20

const msgInvalidBody = "invalid request body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// decodeObject reads a JSON object and keeps each member undecoded so callers
// can check member types themselves.
func decodeObject(r *http.Request) (map[string]json.RawMessage, error) {
	raw, err := readBody(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidBody)
	}
	if fields == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidBody)
	}
	return fields, nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidBody)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidBody)
	}
	if len(raw) > maxJSONBodyBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large")
	}
	return raw, nil
}
