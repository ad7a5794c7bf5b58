package orders

import (
	"encoding/json"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// OrderDTO is the admin view of an order. Items are emitted as JSON rather
// than the stored string when the stored value parses.
type OrderDTO struct {
	ID            string          `json:"id"`
	CustomerEmail string          `json:"customer_email"`
	Items         json.RawMessage `json:"items"`
	Total         string          `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     int64           `json:"created_at"`
}

func FromModel(m models.Order) OrderDTO {
	items := json.RawMessage(m.Items)
	if !json.Valid(items) {
		quoted, _ := json.Marshal(m.Items)
		items = quoted
	}
	return OrderDTO{
		ID:            m.ID,
		CustomerEmail: m.CustomerEmail,
		Items:         items,
		Total:         m.Total.StringFixed(2),
		Status:        m.Status.String(),
		CreatedAt:     m.CreatedAt,
	}
}
