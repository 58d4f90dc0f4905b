//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"library-lending/internal/domain/rental"
	"library-lending/internal/pkg/clock"
	"library-lending/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type stubRentalReadStore struct {
	byID    map[int64]*queries.RentalView
	active  []*queries.RentalView
	overdue []*queries.RentalView

	lastOverdueAsOf time.Time
}

func (s *stubRentalReadStore) FindByID(_ context.Context, id int64) (*queries.RentalView, error) {
	return s.byID[id], nil
}

func (s *stubRentalReadStore) FindActiveByUser(context.Context, int64) ([]*queries.RentalView, error) {
	return s.active, nil
}

func (s *stubRentalReadStore) FindAllActive(context.Context) ([]*queries.RentalView, error) {
	return s.active, nil
}

func (s *stubRentalReadStore) FindOverdue(_ context.Context, asOf time.Time) ([]*queries.RentalView, error) {
	s.lastOverdueAsOf = asOf
	return s.overdue, nil
}

func activeView(id int64, rentDate, expected time.Time) *queries.RentalView {
	return &queries.RentalView{
		ID:                 id,
		UserID:             1,
		BookCopyID:         10,
		RentDate:           rentDate,
		ExpectedReturnDate: expected,
		Status:             string(rental.StatusActive),
	}
}

func TestGetByIDDecoratesDueState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		today           time.Time
		wantState       string
		wantDaysUntil   int
		wantDaysOverdue int
	}{
		{"on time", date(2024, 1, 5), string(rental.DueStateOnTime), 10, 0},
		{"due soon", date(2024, 1, 13), string(rental.DueStateDueSoon), 2, 0},
		{"overdue", date(2024, 1, 18), string(rental.DueStateOverdue), 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubRentalReadStore{byID: map[int64]*queries.RentalView{
				1: activeView(1, date(2024, 1, 1), date(2024, 1, 15)),
			}}
			q := queries.NewRentalQueries(store, clock.NewMockClock(tt.today))

			view, err := q.GetByID(context.Background(), 1)
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, view.DueState)
			assert.Equal(t, tt.wantDaysUntil, view.DaysUntilReturn)
			assert.Equal(t, tt.wantDaysOverdue, view.DaysOverdue)
		})
	}
}

func TestGetByIDReturnedRental(t *testing.T) {
	t.Parallel()

	returnDate := date(2024, 1, 10)
	view := activeView(1, date(2024, 1, 1), date(2024, 1, 15))
	view.Status = string(rental.StatusReturned)
	view.ReturnDate = &returnDate

	store := &stubRentalReadStore{byID: map[int64]*queries.RentalView{1: view}}
	q := queries.NewRentalQueries(store, clock.NewMockClock(date(2024, 2, 1)))

	got, err := q.GetByID(context.Background(), 1)
	require.NoError(t, err)

	want := activeView(1, date(2024, 1, 1), date(2024, 1, 15))
	want.Status = string(rental.StatusReturned)
	want.ReturnDate = &returnDate
	want.DueState = string(rental.DueStateReturned)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestListAllActiveDecoratesEveryRow(t *testing.T) {
	t.Parallel()

	store := &stubRentalReadStore{active: []*queries.RentalView{
		activeView(1, date(2024, 1, 1), date(2024, 1, 15)),
		activeView(2, date(2024, 1, 1), date(2024, 1, 8)),
	}}
	q := queries.NewRentalQueries(store, clock.NewMockClock(date(2024, 1, 10)))

	views, err := q.ListAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, string(rental.DueStateOnTime), views[0].DueState)
	assert.Equal(t, string(rental.DueStateOverdue), views[1].DueState)
	assert.Equal(t, 2, views[1].DaysOverdue)
}

func TestListOverdueDefaultsAsOfToToday(t *testing.T) {
	t.Parallel()

	store := &stubRentalReadStore{}
	q := queries.NewRentalQueries(store, clock.NewMockClock(time.Date(2024, 1, 10, 16, 30, 0, 0, time.UTC)))

	_, err := q.ListOverdue(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 10), store.lastOverdueAsOf)
}

func TestListOverdueHonorsExplicitAsOf(t *testing.T) {
	t.Parallel()

	store := &stubRentalReadStore{overdue: []*queries.RentalView{
		activeView(1, date(2024, 1, 1), date(2024, 1, 15)),
	}}
	q := queries.NewRentalQueries(store, clock.NewMockClock(date(2024, 3, 1)))

	views, err := q.ListOverdue(context.Background(), date(2024, 1, 20))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 20), store.lastOverdueAsOf)
	require.Len(t, views, 1)
	assert.Equal(t, 5, views[0].DaysOverdue)
}
