package queries

import (
	"context"
)

type ExtensionQueries interface {
	GetByID(ctx context.Context, id int64) (*ExtensionRequestView, error)
	// ListPending returns oldest-first so librarians work the queue fairly.
	ListPending(ctx context.Context) ([]*ExtensionRequestView, error)
	ListByUser(ctx context.Context, userID int64) ([]*ExtensionRequestView, error)
	PendingCount(ctx context.Context) (int64, error)
}

type ExtensionReadStore interface {
	FindByID(ctx context.Context, id int64) (*ExtensionRequestView, error)
	FindPending(ctx context.Context) ([]*ExtensionRequestView, error)
	FindByUser(ctx context.Context, userID int64) ([]*ExtensionRequestView, error)
	CountPending(ctx context.Context) (int64, error)
}

type extensionQueriesImpl struct {
	store ExtensionReadStore
}

func NewExtensionQueries(store ExtensionReadStore) ExtensionQueries {
	return &extensionQueriesImpl{store: store}
}

func (q *extensionQueriesImpl) GetByID(ctx context.Context, id int64) (*ExtensionRequestView, error) {
	return q.store.FindByID(ctx, id)
}

func (q *extensionQueriesImpl) ListPending(ctx context.Context) ([]*ExtensionRequestView, error) {
	return q.store.FindPending(ctx)
}

func (q *extensionQueriesImpl) ListByUser(ctx context.Context, userID int64) ([]*ExtensionRequestView, error) {
	return q.store.FindByUser(ctx, userID)
}

func (q *extensionQueriesImpl) PendingCount(ctx context.Context) (int64, error) {
	return q.store.CountPending(ctx)
}
