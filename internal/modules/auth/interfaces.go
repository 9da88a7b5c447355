package auth

import (
	"context"
	"time"

	"propzy/internal/domain"
)

// UserRepository lists the user store methods the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUserName(ctx context.Context, id int64, userName string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// PasswordResetRepository stores hashed single-use reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, p *domain.PasswordReset) error
	GetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
	InvalidateForUser(ctx context.Context, userID int64, at time.Time) error
}

type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
