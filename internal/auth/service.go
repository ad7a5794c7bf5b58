package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/google/uuid"
)

const (
	msgSetupNotAllowed    = "Admin setup is not allowed"
	msgAdminExists        = "Admin already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized"
)

// Service covers admin bootstrap, login and session checks.
type Service interface {
	SetupAdmin(ctx context.Context, creds Credentials) error
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

type adminRepository interface {
	Count(ctx context.Context) (int64, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

type sessionManager interface {
	Create(ctx context.Context, username string) (string, error)
	Lookup(ctx context.Context, sessionID string) (string, bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Admins         adminRepository
	SessionManager sessionManager
	App            config.AppConfig
	Session        config.SessionConfig
	Password       config.PasswordConfig
	Now            func() time.Time
}

type service struct {
	admins   adminRepository
	sessions sessionManager
	app      config.AppConfig
	session  config.SessionConfig
	password config.PasswordConfig
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Admins == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		admins:   params.Admins,
		sessions: params.SessionManager,
		app:      params.App,
		session:  params.Session,
		password: params.Password,
		now:      params.Now,
	}, nil
}

// SetupAdmin creates the first admin when the deployment allows it.
func (s *service) SetupAdmin(ctx context.Context, creds Credentials) error {
	if !s.app.AdminSetupAllowed() {
		return pkgerrors.New(pkgerrors.CodeForbidden, msgSetupNotAllowed)
	}
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeForbidden, msgAdminExists)
	}

	hash, err := security.HashPassword(creds.Password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return s.admins.Create(ctx, &models.Admin{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(creds.Username),
		PasswordHash: hash,
	})
}

func (s *service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		return nil, err
	}
	encoded := ""
	if admin != nil {
		encoded = admin.PasswordHash
	}
	if !security.VerifyOrBurn(creds.Password, encoded, s.password) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
	}

	sessionID, err := s.sessions.Create(ctx, admin.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	token, claims, err := pkgAuth.MintAdminToken(s.session, s.now(), pkgAuth.AdminTokenPayload{
		Username: admin.Username,
		JTI:      sessionID,
	})
	if err != nil {
		_ = s.sessions.Revoke(ctx, sessionID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the session behind token. Unparseable tokens are ignored.
func (s *service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := pkgAuth.ParseAdminToken(s.session, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Authenticate requires both a valid signature and a live session entry.
func (s *service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgUnauthorized)
	}
	claims, err := pkgAuth.ParseAdminToken(s.session, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgUnauthorized)
	}
	username, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup session")
	}
	if !ok || username != claims.Username {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgUnauthorized)
	}
	return &Identity{Username: username, SessionID: claims.ID}, nil
}
