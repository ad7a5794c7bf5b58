package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusPaid || !got.IsValid() {
		t.Fatalf("expected paid, got %q", got)
	}
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
