package postgres

import (
	"context"

	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"gorm.io/gorm"
)

// Store implements uow.Store on top of a gorm connection pool.
type Store struct {
	db *gorm.DB
}

var _ uow.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Repos() uow.Repositories {
	return bind(s.db)
}

// WithinTx runs fn inside one database transaction. gorm rolls back when fn returns an error or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, bind(tx))
	})
}

func bind(db *gorm.DB) uow.Repositories {
	return uow.Repositories{
		Products: &ProductRepository{db: db},
		Ledger:   &Ledger{db: db},
		Orders:   &OrderRepository{db: db},
		Reviews:  &ReviewRepository{db: db},
		Users:    &UserRepository{db: db},
	}
}
