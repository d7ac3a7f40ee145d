package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	authService         = "auth-service"
	useCaseRegister     = "auth.register"
	useCaseLogin        = "auth.login"
	useCaseAuthenticate = "auth.authenticate"
	minPasswordLength   = 6
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
	ErrUnauthenticated    = fmt.Errorf("%w: authentication required", apperr.ErrUnauthorized)
	ErrForbidden          = fmt.Errorf("%w: insufficient role", apperr.ErrForbidden)
)

// Identity is the authenticated caller. Role always comes from storage.
type Identity struct {
	UserID string
	Role   user.Role
	Name   string
}

func (i Identity) Staff() bool { return i.Role.Staff() }

// Require fails unless id holds one of roles. With no roles it only requires authentication.
func Require(id *Identity, roles ...user.Role) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}
	if len(roles) == 0 || slices.Contains(roles, id.Role) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrForbidden, id.Role)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(subject, role, name string) (string, error)
}

// TokenSubject is what a verified token yields.
type TokenSubject interface {
	SubjectOf(raw string) (string, error)
}

type TokenSubjectFunc func(raw string) (string, error)

func (f TokenSubjectFunc) SubjectOf(raw string) (string, error) { return f(raw) }

type IDGenerator interface {
	NewID() string
}

type Service struct {
	users    user.Repository
	hasher   PasswordHasher
	issuer   TokenIssuer
	verifier TokenSubject
	ids      IDGenerator
	obs      application.Instruments

	bootstrapAdmin string
}

type Option func(*Service)

// WithBootstrapAdmin lets an anonymous caller register email as an admin.
func WithBootstrapAdmin(email string) Option {
	return func(s *Service) { s.bootstrapAdmin = strings.TrimSpace(email) }
}

func NewService(users user.Repository, hasher PasswordHasher, issuer TokenIssuer, verifier TokenSubject, ids IDGenerator, tel observability.Observability, opts ...Option) *Service {
	s := &Service{
		users:    users,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		ids:      ids,
		obs:      application.NewInstruments(tel, authService),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	// Actor is the authenticated caller, nil for self-registration.
	Actor *Identity
}

type Session struct {
	Token string
	User  *user.User
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *Session, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseRegister, "Register", attribute.String("user.role", in.Role))
	defer func() { exec.End(ctx, err) }()

	if len(in.Password) < minPasswordLength {
		exec.Fail("PASSWORD_TOO_SHORT")
		return nil, apperr.Validation(fmt.Sprintf("auth: password must be at least %d characters", minPasswordLength))
	}
	role := user.RoleCustomer
	if in.Role != "" {
		if role, err = user.ParseRole(in.Role); err != nil {
			exec.Fail("ROLE_INVALID")
			return nil, err
		}
	}
	if role == user.RoleAdmin && !s.mayCreateAdmin(in) {
		exec.Fail("ROLE_FORBIDDEN")
		return nil, fmt.Errorf("%w: admin accounts are created by an admin", ErrForbidden)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		exec.Fail("HASH_FAILED")
		return nil, err
	}
	u, err := user.New(s.ids.NewID(), in.Email, in.Name, hash, role)
	if err != nil {
		exec.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, err
	}
	if err := s.users.Insert(ctx, u); err != nil {
		exec.Fail("REPO_INSERT_FAILED")
		return nil, application.WrapRepositoryError(err)
	}

	token, err := s.issuer.Issue(u.ID, string(u.Role), u.Name)
	if err != nil {
		exec.Fail("TOKEN_ISSUE_FAILED")
		return nil, err
	}
	exec.Field("user_id", u.ID)
	return &Session{Token: token, User: u}, nil
}

// mayCreateAdmin allows an admin actor, or the configured bootstrap email.
func (s *Service) mayCreateAdmin(in RegisterInput) bool {
	if in.Actor != nil && in.Actor.Role == user.RoleAdmin {
		return true
	}
	return s.bootstrapAdmin != "" && strings.EqualFold(strings.TrimSpace(in.Email), s.bootstrapAdmin)
}

type LoginInput struct {
	Email    string
	Password string
	// Role, when set, must match the stored role.
	Role string
}

func (s *Service) Login(ctx context.Context, in LoginInput) (_ *Session, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseLogin, "Login")
	defer func() { exec.End(ctx, err) }()

	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		exec.Fail("UNKNOWN_EMAIL")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		exec.Fail("REPO_LOOKUP_FAILED")
		return nil, application.WrapRepositoryError(err)
	}
	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		exec.Fail("PASSWORD_MISMATCH")
		return nil, ErrInvalidCredentials
	}
	if in.Role != "" {
		role, perr := user.ParseRole(in.Role)
		if perr != nil || role != u.Role {
			exec.Fail("ROLE_MISMATCH")
			return nil, ErrInvalidCredentials
		}
	}

	token, err := s.issuer.Issue(u.ID, string(u.Role), u.Name)
	if err != nil {
		exec.Fail("TOKEN_ISSUE_FAILED")
		return nil, err
	}
	exec.Field("user_id", u.ID)
	return &Session{Token: token, User: u}, nil
}

// Authenticate verifies raw and loads the user it names. The role in the token is ignored.
func (s *Service) Authenticate(ctx context.Context, raw string) (_ *Identity, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseAuthenticate, "Authenticate")
	defer func() { exec.End(ctx, err) }()

	if raw == "" {
		exec.Fail("TOKEN_MISSING")
		return nil, ErrUnauthenticated
	}
	subject, err := s.verifier.SubjectOf(raw)
	if err != nil {
		exec.Fail("TOKEN_INVALID")
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	u, err := s.users.Get(ctx, subject)
	if errors.Is(err, user.ErrNotFound) {
		exec.Fail("USER_GONE")
		return nil, ErrUnauthenticated
	}
	if err != nil {
		exec.Fail("REPO_LOOKUP_FAILED")
		return nil, application.WrapRepositoryError(err)
	}
	return &Identity{UserID: u.ID, Role: u.Role, Name: u.Name}, nil
}
