package user

import (
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalisesEmail(t *testing.T) {
	u, err := New("u1", "  Ana@Example.COM ", "Ana", "hash", RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
}

func TestNewValidation(t *testing.T) {
	_, err := New("u1", "not-an-email", "Ana", "hash", RoleCustomer)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = New("u1", "ana@example.com", "Ana", "hash", Role("root"))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleStaff(t *testing.T) {
	assert.True(t, RoleSeller.Staff())
	assert.True(t, RoleAdmin.Staff())
	assert.False(t, RoleCustomer.Staff())

	r, err := ParseRole(" Seller ")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, r)
}
