package queries

import (
	"context"
	"time"

	"library-lending/internal/domain/rental"
	"library-lending/internal/pkg/clock"
)

type RentalQueries interface {
	GetByID(ctx context.Context, id int64) (*RentalView, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*RentalView, error)
	ListAllActive(ctx context.Context) ([]*RentalView, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*RentalView, error)
}

type RentalReadStore interface {
	FindByID(ctx context.Context, id int64) (*RentalView, error)
	FindActiveByUser(ctx context.Context, userID int64) ([]*RentalView, error)
	FindAllActive(ctx context.Context) ([]*RentalView, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]*RentalView, error)
}

type rentalQueriesImpl struct {
	store RentalReadStore
	clock clock.Clock
}

func NewRentalQueries(store RentalReadStore, clk clock.Clock) RentalQueries {
	return &rentalQueriesImpl{store: store, clock: clk}
}

func (q *rentalQueriesImpl) GetByID(ctx context.Context, id int64) (*RentalView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q.decorate(view)
	return view, nil
}

func (q *rentalQueriesImpl) ListActiveByUser(ctx context.Context, userID int64) ([]*RentalView, error) {
	views, err := q.store.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	q.decorateAll(views)
	return views, nil
}

func (q *rentalQueriesImpl) ListAllActive(ctx context.Context) ([]*RentalView, error) {
	views, err := q.store.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	q.decorateAll(views)
	return views, nil
}

func (q *rentalQueriesImpl) ListOverdue(ctx context.Context, asOf time.Time) ([]*RentalView, error) {
	if asOf.IsZero() {
		asOf = clock.Today(q.clock)
	}
	views, err := q.store.FindOverdue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		decorateView(v, asOf)
	}
	return views, nil
}

func (q *rentalQueriesImpl) decorate(view *RentalView) {
	decorateView(view, clock.Today(q.clock))
}

func (q *rentalQueriesImpl) decorateAll(views []*RentalView) {
	today := clock.Today(q.clock)
	for _, v := range views {
		decorateView(v, today)
	}
}

// decorateView fills the due-state fields derived from "today". The rows stay
// raw in the store; derivation is a query-time concern.
func decorateView(view *RentalView, today time.Time) {
	entity, err := rental.ReconstructRental(
		view.ID,
		view.UserID,
		view.BookCopyID,
		view.RentDate,
		view.ExpectedReturnDate,
		view.ReturnDate,
		rental.Status(view.Status),
		view.ExtensionCount,
	)
	if err != nil {
		// A row that fails reconstruction is left undecorated rather than
		// hidden from listings.
		return
	}
	view.DueState = string(entity.DueState(today))
	view.DaysUntilReturn = entity.DaysUntilReturn(today)
	view.DaysOverdue = entity.DaysOverdue(today)
}
