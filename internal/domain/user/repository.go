package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// GetByNormalizedEmail matches on the trimmed, lower-cased address.
	GetByNormalizedEmail(ctx context.Context, email string) (User, error)
}
