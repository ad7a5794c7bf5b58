package product

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const imageKeyPrefix = "products/"

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type productStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type blobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// Service exposes the catalog read and admin write paths.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id string) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   productStore
	blobs  blobStore
	logger *logger.Logger
	newID  func() string
}

// NewService builds the product service backed by the repository and blob store.
func NewService(repo productStore, blobs blobStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{repo: repo, blobs: blobs, logger: logg, newID: uuid.NewString}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

// Create uploads the image first so a failed upload leaves no orphan row.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	id := s.newID()
	row := &models.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}

	if input.Image != nil && input.Image.Body != nil && input.Image.Size > 0 {
		key, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		row.ImageKey = &key
	}

	created, err := s.repo.CreateProduct(ctx, row)
	if err != nil {
		if row.ImageKey != nil {
			s.deleteBlob(ctx, *row.ImageKey)
		}
		return nil, err
	}
	dto := FromModel(*created)
	return &dto, nil
}

// Delete removes the image, then the row.
func (s *service) Delete(ctx context.Context, id string) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if row.ImageKey != nil && *row.ImageKey != "" {
		if err := s.blobs.Delete(ctx, *row.ImageKey); err != nil {
			return err
		}
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(img.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Image could not be read")
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Image must be a PNG, JPEG, GIF or WEBP file").
			WithDetails(map[string]any{"content_type": detected.String()})
	}

	key := imageKeyPrefix + uuid.NewString() + "-" + sanitizeFilename(img.Filename)
	body := io.MultiReader(bytes.NewReader(head), img.Body)
	if err := s.blobs.Upload(ctx, key, detected.String(), body, img.Size); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && s.logger != nil {
		s.logger.Warn(s.logger.WithField(ctx, "image_key", key), "orphaned product image not removed")
	}
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
