package product

import (
	"io"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CreateProductInput is the validated admin form.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Image       *ImageUpload
}

// ImageUpload is an optional product image taken from the multipart form.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ProductDTO is the public catalog view.
type ProductDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageKey    *string `json:"image_key"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   int64   `json:"created_at"`
}

func FromModel(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageKey:    p.ImageKey,
		CreatedAt:   p.CreatedAt,
	}
	if p.ImageKey != nil && *p.ImageKey != "" {
		url := "/media/" + *p.ImageKey
		dto.ImageURL = &url
	}
	return dto
}
