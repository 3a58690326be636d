// Package users provides the credential store over PostgreSQL.
package users

import (
	"context"

	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
