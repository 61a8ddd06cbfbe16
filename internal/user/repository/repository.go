package repository

import (
	"context"

	"namhatta-management/backend/internal/user/domain"
)

// Repository defines read access to user accounts. The auth core never
// creates or mutates users; administration does that elsewhere.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
