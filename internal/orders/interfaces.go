package orders

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists captured orders. There is no update or delete path.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
}
