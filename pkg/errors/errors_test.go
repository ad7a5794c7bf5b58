package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeCartEmpty, status: http.StatusBadRequest, publicMsg: "Cart empty"},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "Unauthorized"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "Not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "Too many requests", retryable: true},
		{code: CodePaymentNotCompleted, status: http.StatusBadRequest, publicMsg: "Payment failed", detailsOK: true},
		{code: CodeProviderAuth, status: http.StatusInternalServerError, publicMsg: "Failed to get PayPal token", retryable: true},
		{code: CodeProviderOrderCreate, status: http.StatusInternalServerError, publicMsg: "Failed to create PayPal order", retryable: true},
		{code: CodeProviderCapture, status: http.StatusInternalServerError, publicMsg: "Failed to capture PayPal order", retryable: true},
		{code: CodeProviderProtocol, status: http.StatusInternalServerError, publicMsg: "Unexpected response from PayPal"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	inner := New(CodeProviderCapture, "capture failed")
	outer := fmt.Errorf("checkout: %w", inner)
	if !IsCode(outer, CodeProviderCapture) {
		t.Fatalf("expected IsCode to find wrapped code")
	}
	if IsCode(outer, CodeValidation) {
		t.Fatalf("unexpected code match")
	}
	if IsCode(nil, CodeInternal) {
		t.Fatalf("nil error must not match")
	}
}

func TestDumpCarriesChainAndPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey", TableName: "orders", Detail: "Key (id)=(ORDER-1) already exists."}
	err := Wrap(CodeConflict, fmt.Errorf("insert order: %w", pgErr), "order already recorded")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected three links in chain, got %v", d.Chain)
	}
	if d.Postgres == nil || d.Postgres.Constraint != "orders_pkey" {
		t.Fatalf("expected postgres detail, got %+v", d.Postgres)
	}
	fields := d.Fields()
	if fields["pg_code"] != "23505" || fields["error_code"] != "CONFLICT" {
		t.Fatalf("unexpected log fields %v", fields)
	}
}

func TestDumpOfPlainErrorIsInternal(t *testing.T) {
	d := Dump(stdErrors.New("boom"))
	if d.Code != CodeInternal || !d.Retryable || d.Postgres != nil {
		t.Fatalf("unexpected dump %+v", d)
	}
	if _, ok := d.Fields()["pg_code"]; ok {
		t.Fatal("pg fields must be absent without a database error")
	}
}
