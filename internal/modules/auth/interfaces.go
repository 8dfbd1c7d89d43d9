package auth

import (
	"context"

	"aloka/internal/domain"
)

// UserRepository lists the store methods the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID, email, role string) (string, error)
}
