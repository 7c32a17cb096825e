// Package services contains server-side business logic: accounts, login
// sessions, the owner-scoped task engine and task export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// hashPassword is a seam for tests that need a failing hasher.
var hashPassword = credentials.Hash

// UserService is the user directory: registration and lookups.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, log: l.With("module", "users")}
}

// Register validates the form, then checks uniqueness and inserts the user
// in one transaction. Username and email are stored trimmed.
func (s *UserService) Register(ctx context.Context, r Registration) (*models.User, error) {
	if err := ValidateRegistration(r); err != nil {
		return nil, err
	}

	hash, err := hashPassword(r.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserName:     strings.TrimSpace(r.Username),
		Email:        strings.TrimSpace(r.Email),
		PasswordHash: hash,
	}

	created, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByUsernameOrEmail(ctx, user.UserName, user.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.NewValidationError(common.DuplicateAccount)
		}

		return repo.Create(ctx, user)
	})
	if err != nil {
		if _, ok := common.ValidationKindOf(err); ok {
			return nil, err
		}
		if isUniqueViolation(err) {
			return nil, common.NewValidationError(common.DuplicateAccount)
		}
		return nil, common.StorageError(err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// FindByUsername returns the user or common.ErrorNotFound.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, storageErr(err)
	}
	return u, nil
}

// FindByID returns the user or common.ErrorNotFound.
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// storageErr passes domain errors through and marks everything else as a
// storage failure.
func storageErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrUnauthenticated) {
		return err
	}
	if _, ok := common.ValidationKindOf(err); ok {
		return err
	}
	return common.StorageError(err)
}
