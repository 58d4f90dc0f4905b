//go:build unit

package rental_test

import (
	"testing"
	"time"

	"library-lending/internal/domain/rental"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRental(t *testing.T) {
	t.Parallel()

	t.Run("computes expected return date from period", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 1), rental.DefaultPeriodDays)
		require.NoError(t, err)

		assert.Equal(t, date(2024, 1, 1), r.RentDate())
		assert.Equal(t, date(2024, 1, 15), r.ExpectedReturnDate())
		assert.Equal(t, rental.StatusActive, r.Status())
		assert.Equal(t, 0, r.ExtensionCount())
		assert.Nil(t, r.ReturnDate())
	})

	t.Run("truncates rent date to midnight UTC", func(t *testing.T) {
		rentedAt := time.Date(2024, 1, 1, 17, 45, 3, 0, time.UTC)
		r, err := rental.NewRental(1, 10, rentedAt, 7)
		require.NoError(t, err)

		assert.Equal(t, date(2024, 1, 1), r.RentDate())
		assert.Equal(t, date(2024, 1, 8), r.ExpectedReturnDate())
	})

	t.Run("rejects non-positive period", func(t *testing.T) {
		_, err := rental.NewRental(1, 10, date(2024, 1, 1), 0)
		assert.ErrorIs(t, err, rental.ErrInvalidPeriod)

		_, err = rental.NewRental(1, 10, date(2024, 1, 1), -3)
		assert.ErrorIs(t, err, rental.ErrInvalidPeriod)
	})
}

func TestReconstructRental(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := rental.ReconstructRental(1, 1, 10, date(2024, 1, 1), date(2024, 1, 15), nil, rental.Status("LOST"), 0)
		assert.ErrorIs(t, err, rental.ErrInvalidStatus)
	})

	t.Run("return date must match RETURNED status", func(t *testing.T) {
		rd := date(2024, 1, 10)

		_, err := rental.ReconstructRental(1, 1, 10, date(2024, 1, 1), date(2024, 1, 15), &rd, rental.StatusActive, 0)
		assert.ErrorIs(t, err, rental.ErrInvalidReturnState)

		_, err = rental.ReconstructRental(1, 1, 10, date(2024, 1, 1), date(2024, 1, 15), nil, rental.StatusReturned, 0)
		assert.ErrorIs(t, err, rental.ErrInvalidReturnState)
	})
}

func TestMarkReturned(t *testing.T) {
	t.Parallel()

	t.Run("transitions to RETURNED once", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)

		require.NoError(t, r.MarkReturned(date(2024, 1, 10)))
		assert.Equal(t, rental.StatusReturned, r.Status())
		require.NotNil(t, r.ReturnDate())
		assert.Equal(t, date(2024, 1, 10), *r.ReturnDate())

		assert.ErrorIs(t, r.MarkReturned(date(2024, 1, 11)), rental.ErrAlreadyReturned)
	})

	t.Run("rejects return before rent date", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 5), 14)
		require.NoError(t, err)

		assert.ErrorIs(t, r.MarkReturned(date(2024, 1, 4)), rental.ErrReturnBeforeRent)
		assert.Equal(t, rental.StatusActive, r.Status())
	})
}

func TestExtend(t *testing.T) {
	t.Parallel()

	t.Run("pushes the expected return date and counts", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)

		require.NoError(t, r.Extend(7))
		assert.Equal(t, date(2024, 1, 22), r.ExpectedReturnDate())
		assert.Equal(t, 1, r.ExtensionCount())

		require.NoError(t, r.Extend(7))
		assert.Equal(t, date(2024, 1, 29), r.ExpectedReturnDate())
		assert.Equal(t, 2, r.ExtensionCount())
	})

	t.Run("rejects non-positive days", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)

		assert.ErrorIs(t, r.Extend(0), rental.ErrInvalidPeriod)
	})

	t.Run("rejects extension after return", func(t *testing.T) {
		r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)
		require.NoError(t, r.MarkReturned(date(2024, 1, 10)))

		assert.ErrorIs(t, r.Extend(7), rental.ErrNotActive)
	})
}

func TestCanSelfExtend(t *testing.T) {
	t.Parallel()

	r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
	require.NoError(t, err)

	for i := 0; i < rental.MaxSelfExtensions; i++ {
		assert.True(t, r.CanSelfExtend(), "extension %d should be self-service", i+1)
		require.NoError(t, r.Extend(7))
	}
	assert.False(t, r.CanSelfExtend())
}

func TestDaysUntilReturn(t *testing.T) {
	t.Parallel()

	r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
	require.NoError(t, err)

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"on rent day", date(2024, 1, 1), 14},
		{"mid period", date(2024, 1, 10), 5},
		{"on due date", date(2024, 1, 15), 0},
		{"overdue floors at zero", date(2024, 1, 20), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DaysUntilReturn(tt.today))
		})
	}

	t.Run("zero after return", func(t *testing.T) {
		returned, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)
		require.NoError(t, returned.MarkReturned(date(2024, 1, 10)))
		assert.Equal(t, 0, returned.DaysUntilReturn(date(2024, 1, 12)))
	})
}

func TestDaysOverdue(t *testing.T) {
	t.Parallel()

	r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
	require.NoError(t, err)

	assert.Equal(t, 0, r.DaysOverdue(date(2024, 1, 14)))
	assert.Equal(t, 0, r.DaysOverdue(date(2024, 1, 15)))
	assert.Equal(t, 3, r.DaysOverdue(date(2024, 1, 18)))
}

func TestDueState(t *testing.T) {
	t.Parallel()

	r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
	require.NoError(t, err)

	tests := []struct {
		name  string
		today time.Time
		want  rental.DueState
	}{
		{"well before due", date(2024, 1, 5), rental.DueStateOnTime},
		{"window boundary", date(2024, 1, 12), rental.DueStateDueSoon},
		{"on due date", date(2024, 1, 15), rental.DueStateDueSoon},
		{"past due", date(2024, 1, 16), rental.DueStateOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DueState(tt.today))
		})
	}

	t.Run("returned wins over everything", func(t *testing.T) {
		returned, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
		require.NoError(t, err)
		require.NoError(t, returned.MarkReturned(date(2024, 1, 20)))
		assert.Equal(t, rental.DueStateReturned, returned.DueState(date(2024, 1, 21)))
	})
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()

	r, err := rental.NewRental(1, 10, date(2024, 1, 1), 14)
	require.NoError(t, err)

	assert.False(t, r.IsOverdue(date(2024, 1, 15)))
	assert.True(t, r.IsOverdue(date(2024, 1, 16)))

	require.NoError(t, r.MarkReturned(date(2024, 1, 20)))
	assert.False(t, r.IsOverdue(date(2024, 1, 21)))
}
