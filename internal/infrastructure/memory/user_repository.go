package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
)

type UserRepository struct {
	s  *Store
	mu sync.Locker
}

func (r *UserRepository) Insert(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	if _, exists := r.s.data.users[u.ID]; exists {
		return user.ErrEmailTaken
	}
	c := *u
	r.s.data.users[u.ID] = &c
	return nil
}

func (r *UserRepository) Get(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrNotFound
}
