package queries

import (
	"context"
)

type UserQueries interface {
	GetByID(ctx context.Context, id int64) (*AuthorizedUserView, error)
}

type UserReadStore interface {
	FindByID(ctx context.Context, id int64) (*AuthorizedUserView, error)
	// FindByUsername also returns the stored password hash for credential checks.
	FindByUsername(ctx context.Context, username string) (*AuthorizedUserView, string, error)
}

type userQueriesImpl struct {
	store UserReadStore
}

func NewUserQueries(store UserReadStore) UserQueries {
	return &userQueriesImpl{store: store}
}

func (q *userQueriesImpl) GetByID(ctx context.Context, id int64) (*AuthorizedUserView, error) {
	return q.store.FindByID(ctx, id)
}
