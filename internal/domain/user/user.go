package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
)

var (
	ErrNotFound    = fmt.Errorf("%w: user", apperr.ErrNotFound)
	ErrEmailTaken  = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	ErrUnknownRole = apperr.Validation("user: unknown role")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Staff reports whether the role may manage the catalog and fulfil orders.
func (r Role) Staff() bool { return r == RoleSeller || r == RoleAdmin }

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func New(id, email, name, passwordHash string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("user: email is invalid")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("user: name is required")
	}
	if passwordHash == "" {
		return nil, apperr.Validation("user: password is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &User{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
