package auth

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// AdminRepository persists admin accounts.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(conn *gorm.DB) *AdminRepository {
	return &AdminRepository{db: conn}
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	return n, nil
}

// FindByUsername returns (nil, nil) when no such admin exists.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	return &admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, msgAdminExists)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return nil
}
