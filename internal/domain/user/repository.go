package user

import (
	"context"

	"github.com/garage-sale-marketplace/internal/domain/shared"
)

// Repository stores user profiles
type Repository interface {
	// Upsert inserts the profile or updates email and display name, keeping the stored role
	Upsert(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	Delete(ctx context.Context, id string) error
}

// ErrUserNotFound indicates a missing profile
type ErrUserNotFound struct {
	UserID string
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID
}

func (e ErrUserNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	return t.UserID == "" || t.UserID == e.UserID
}
