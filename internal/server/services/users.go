package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/cryptox"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
)

const (
	minPasswordLength = 6
	maxEmailLength    = 255
	maxNameLength     = 100
)

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserService provides account operations:
// - Register / Login: create or authenticate a user and mint a session token
// - Profile / UpdateProfile / Deactivate: the caller's own account
// - PublicUser / PublicProfile: read-only views of active users
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	assets      *AssetService
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, assets *AssetService, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		assets:      assets,
		logger:      logger.With("module", "users"),
	}
}

// Register creates an active user and returns it with a session token.
// A taken email yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}
	firstName, err := requireName("first_name", in.FirstName)
	if err != nil {
		return nil, "", err
	}
	lastName, err := requireName("last_name", in.LastName)
	if err != nil {
		return nil, "", err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, "", common.ErrAlreadyExists
		}
		return nil, "", persistenceError(ctx, s.logger, "create user failed", err)
	}

	token, err := s.issue(ctx, u)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "user registered", "id", u.ID)
	return u, token, nil
}

// Login checks the credentials of an active user. Unknown email, wrong
// password and deactivated account all yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", persistenceError(ctx, s.logger, "user lookup failed", err)
	}

	ok, err := cryptox.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unreadable", "id", u.ID, "error", err)
		return nil, "", common.ErrInvalidCredentials
	}
	if !ok || !u.IsActive {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.issue(ctx, u)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Profile returns the caller's account and assets.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, []AssetView, error) {
	u, err := s.getUser(ctx, userID, false)
	if err != nil {
		return nil, nil, err
	}

	views, err := s.assets.ListMine(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, views, nil
}

// UpdateProfile applies a partial change inside a transaction that locks
// the user row. Empty input returns the current user unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	if upd.FirstName != nil {
		v, err := requireName("first_name", *upd.FirstName)
		if err != nil {
			return nil, err
		}
		upd.FirstName = &v
	}
	if upd.LastName != nil {
		v, err := requireName("last_name", *upd.LastName)
		if err != nil {
			return nil, err
		}
		upd.LastName = &v
	}
	if upd.Email != nil {
		v, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		upd.Email = &v
	}

	if upd.FirstName == nil && upd.LastName == nil && upd.Email == nil {
		return s.getUser(ctx, userID, false)
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if upd.FirstName != nil {
			u.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			u.LastName = *upd.LastName
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}

		updated, err = repo.Update(ctx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, persistenceError(ctx, s.logger, "update profile failed", err, "id", userID)
	}

	return updated, nil
}

// Deactivate hides the account and its assets from public views. Nothing
// is deleted.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	if err := s.repomanager.Users(s.db).Deactivate(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return persistenceError(ctx, s.logger, "deactivate failed", err, "id", userID)
	}

	s.logger.Info(ctx, "user deactivated", "id", userID)
	return nil
}

// PublicUser returns an active user.
func (s *UserService) PublicUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUser(ctx, userID, true)
}

// PublicProfile returns an active user with their assets.
func (s *UserService) PublicProfile(ctx context.Context, userID int64) (*models.User, []AssetView, error) {
	u, err := s.getUser(ctx, userID, true)
	if err != nil {
		return nil, nil, err
	}

	views, err := s.assets.ListMine(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, views, nil
}

func (s *UserService) getUser(ctx context.Context, userID int64, activeOnly bool) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	var (
		u   *models.User
		err error
	)
	if activeOnly {
		u, err = repo.GetActiveByID(ctx, userID)
	} else {
		u, err = repo.GetByID(ctx, userID)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, persistenceError(ctx, s.logger, "user lookup failed", err, "id", userID)
	}
	return u, nil
}

func (s *UserService) issue(ctx context.Context, u *models.User) (string, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "id", u.ID, "error", err)
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// burnVerify runs a password check against a throwaway hash for unknown
// emails.
func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = cryptox.HashPassword("dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = cryptox.VerifyPassword(password, s.dummyHash)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: valid email is required", common.ErrValidation)
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return "", fmt.Errorf("%w: email must be at most %d characters", common.ErrValidation, maxEmailLength)
	}
	return email, nil
}

func requireName(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrValidation, field)
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return "", fmt.Errorf("%w: %s must be at most %d characters", common.ErrValidation, field, maxNameLength)
	}
	return v, nil
}
