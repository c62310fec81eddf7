package user

import (
	"errors"
	"testing"

	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestProfile_IsAdmin(t *testing.T) {
	var missing *Profile
	assert.False(t, missing.IsAdmin())
	assert.False(t, (&Profile{Role: shared.RoleUser}).IsAdmin())
	assert.False(t, (&Profile{}).IsAdmin())
	assert.True(t, (&Profile{Role: shared.RoleAdmin}).IsAdmin())
}

func TestProfile_ConnectedAccount(t *testing.T) {
	var missing *Profile
	assert.Empty(t, missing.ConnectedAccount())
	assert.Equal(t, "acct_123", (&Profile{StripeAccountID: "acct_123"}).ConnectedAccount())
}

func TestErrUserNotFound(t *testing.T) {
	err := ErrUserNotFound{UserID: "u1"}

	assert.Equal(t, "user not found: u1", err.Error())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(err, ErrUserNotFound{}))
	assert.False(t, errors.Is(err, ErrUserNotFound{UserID: "u2"}))
	assert.False(t, errors.Is(err, shared.ErrForbidden))
}
