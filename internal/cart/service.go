package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	msgInvalidProductID = "Invalid productId"
	msgInvalidQuantity  = "Quantity must be a positive integer"
	msgProductNotFound  = "Product not found"
)

type productLoader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, cartID string) (*Cart, error)
	AddItem(ctx context.Context, cartID string, input AddItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error)
}

type AddItemInput struct {
	ProductID string
	Quantity  int
}

type service struct {
	store    Store
	products productLoader
}

// NewService builds a cart service backed by the provided store and catalog.
func NewService(store Store, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, products: products}, nil
}

// Get returns the stored cart or an empty one.
func (s *service) Get(ctx context.Context, cartID string) (*Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return New(), nil
	}
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return New(), nil
	}
	return c, nil
}

// AddItem merges quantity into an existing line without touching the catalog;
// a new line snapshots the product's current name and price.
func (s *service) AddItem(ctx context.Context, cartID string, input AddItemInput) (*Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidProductID)
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidQuantity)
	}

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if !c.Increment(input.ProductID, input.Quantity) {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
			}
			return nil, err
		}
		c.Add(Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  input.Quantity,
		})
	}

	if err := s.store.Put(ctx, cartID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops the product. Without a cart id there is nothing to change.
func (s *service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return New(), nil
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.store.Put(ctx, cartID, c); err != nil {
		return nil, err
	}
	return c, nil
}
