// Package services contains the gateway's business logic. This file
// implements UserService: signup, login and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/revocations"
)

// DefaultRole is assigned when signup does not name a role.
const DefaultRole = "user"

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	revocations revocations.Repository
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher,
	tokens TokenIssuer, revs revocations.Repository, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revs,
		log:         log.With("module", "users"),
	}
}

// Signup creates a credential and returns a token for it. The existence
// check and the insert share one transaction; the unique constraint on email
// still decides concurrent signups.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateSignup(in); err != nil {
		return "", err
	}
	if in.Role == "" {
		in.Role = DefaultRole
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return "", err
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		if exists {
			return common.ErrAlreadyExists
		}

		user, err = repo.Create(ctx, &models.User{
			Name:         in.Name,
			Email:        in.Email,
			Role:         in.Role,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return common.ErrAlreadyExists
			}
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) || errors.Is(err, common.ErrStorage) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return token, nil
}

// Login returns a fresh token and the stored role. An unknown email yields
// common.ErrorNotFound and a wrong password common.ErrInvalidCredential.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, common.Invalid("email", "required")
	}
	if password == "" {
		return nil, common.Invalid("password", "required")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrInvalidCredential) {
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &LoginResult{Token: token, Role: user.Role}, nil
}

// Logout revokes the presented token until it expires. Without an identity
// there is nothing to revoke and the client simply discards its token.
func (s *UserService) Logout(ctx context.Context, id *auth.Identity) error {
	if id == nil || id.TokenID == "" {
		return nil
	}
	err := s.revocations.Revoke(ctx, models.Revocation{TokenID: id.TokenID, ExpiresAt: id.ExpiresAt})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	s.log.Info(ctx, "token revoked", "user_id", id.UserID)
	return nil
}

func validateSignup(in SignupInput) error {
	if in.Name == "" {
		return common.Invalid("name", "required")
	}
	if in.Email == "" {
		return common.Invalid("email", "required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return common.Invalid("email", "malformed")
	}
	if in.Password == "" {
		return common.Invalid("password", "required")
	}
	return nil
}
