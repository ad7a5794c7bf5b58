package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	pg := errors.New(`ERROR: duplicate key value violates unique constraint "orders_pkey" (SQLSTATE 23505)`)
	lite := errors.New("UNIQUE constraint failed: admins.username")

	if !IsUniqueViolation(pg, "") || !IsUniqueViolation(lite, "") {
		t.Fatal("expected both dialects to be recognised")
	}
	if !IsUniqueViolation(pg, "orders_pkey") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pg, "admins_username_key") {
		t.Fatal("unexpected constraint match")
	}
	if IsUniqueViolation(nil, "") || IsUniqueViolation(errors.New("boom"), "") {
		t.Fatal("unexpected match")
	}
}
