//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/domain/rental"
	"library-lending/internal/domain/user"
	"library-lending/internal/pkg/clock"
	"library-lending/internal/usecase/commands"
	"library-lending/internal/usecase/queries"
	"library-lending/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	member    = shared.Actor{UserID: 1, Role: user.RoleMember}
	otherUser = shared.Actor{UserID: 2, Role: user.RoleMember}
	librarian = shared.Actor{UserID: 99, Role: user.RoleLibrarian}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type RentalCommandsTestSuite struct {
	suite.Suite
	store   *memStore
	clock   *clock.MockClock
	rentals commands.RentalCommands
}

func TestRentalCommandsSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RentalCommandsTestSuite))
}

func (s *RentalCommandsTestSuite) SetupTest() {
	s.store = newMemStore()
	s.store.addCopy(10, "The Go Programming Language", "Donovan & Kernighan", true)
	s.store.addCopy(11, "Designing Data-Intensive Applications", "Kleppmann", false)

	s.clock = clock.NewMockClock(date(2024, 1, 1))

	uow := &fakeUoW{store: s.store}
	rentalQueries := queries.NewRentalQueries(&fakeRentalReadStore{store: s.store}, s.clock)
	s.rentals = commands.NewRentalCommands(uow, rentalQueries, s.clock)
}

// Each subtest gets a fresh store.
func (s *RentalCommandsTestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *RentalCommandsTestSuite) TestCheckout() {
	s.Run("opens rental with default period and reserves the copy", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		assert.Equal(s.T(), int64(1), view.UserID)
		assert.Equal(s.T(), int64(10), view.BookCopyID)
		assert.Equal(s.T(), "The Go Programming Language", view.BookTitle)
		assert.Equal(s.T(), date(2024, 1, 1), view.RentDate)
		assert.Equal(s.T(), date(2024, 1, 15), view.ExpectedReturnDate)
		assert.Equal(s.T(), string(rental.StatusActive), view.Status)
		assert.Equal(s.T(), 0, view.ExtensionCount)

		assert.False(s.T(), s.store.copies[10].available)
	})

	s.Run("honors an explicit period", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 7)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), date(2024, 1, 8), view.ExpectedReturnDate)
	})

	s.Run("unknown copy", func() {
		_, err := s.rentals.Checkout(context.Background(), member, member.UserID, 404, 0)
		assert.ErrorIs(s.T(), err, commands.ErrCopyNotFound)
	})

	s.Run("copy already out", func() {
		_, err := s.rentals.Checkout(context.Background(), member, member.UserID, 11, 0)
		assert.ErrorIs(s.T(), err, commands.ErrCopyUnavailable)
	})

	s.Run("member cannot check out for someone else", func() {
		_, err := s.rentals.Checkout(context.Background(), member, otherUser.UserID, 10, 0)
		assert.ErrorIs(s.T(), err, commands.ErrNotRentalOwner)
		assert.True(s.T(), s.store.copies[10].available)
	})

	s.Run("librarian can check out on a patron's behalf", func() {
		view, err := s.rentals.Checkout(context.Background(), librarian, member.UserID, 10, 0)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), member.UserID, view.UserID)
	})

	s.Run("negative period", func() {
		_, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, -1)
		assert.ErrorIs(s.T(), err, commands.ErrValidation)
	})
}

func (s *RentalCommandsTestSuite) TestReturn() {
	s.Run("closes the rental and frees the copy", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		s.clock.Set(date(2024, 1, 10))
		returned, err := s.rentals.Return(context.Background(), member, view.ID)
		require.NoError(s.T(), err)

		assert.Equal(s.T(), string(rental.StatusReturned), returned.Status)
		require.NotNil(s.T(), returned.ReturnDate)
		assert.Equal(s.T(), date(2024, 1, 10), *returned.ReturnDate)
		assert.True(s.T(), s.store.copies[10].available)
	})

	s.Run("already returned", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)
		_, err = s.rentals.Return(context.Background(), member, view.ID)
		require.NoError(s.T(), err)

		_, err = s.rentals.Return(context.Background(), member, view.ID)
		assert.ErrorIs(s.T(), err, commands.ErrRentalAlreadyReturned)
	})

	s.Run("unknown rental", func() {
		_, err := s.rentals.Return(context.Background(), member, 404)
		assert.ErrorIs(s.T(), err, commands.ErrRentalNotFound)
	})

	s.Run("member cannot return someone else's rental", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		_, err = s.rentals.Return(context.Background(), otherUser, view.ID)
		assert.ErrorIs(s.T(), err, commands.ErrNotRentalOwner)
		assert.Equal(s.T(), rental.StatusActive, s.store.rentals[view.ID].status)
	})

	s.Run("librarian can return for any patron", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		_, err = s.rentals.Return(context.Background(), librarian, view.ID)
		require.NoError(s.T(), err)
	})
}

func (s *RentalCommandsTestSuite) TestExtend() {
	s.Run("self-service until the cap, then escalation", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)
		rentalID := view.ID

		// First two extensions go through directly.
		result, err := s.rentals.Extend(context.Background(), member, rentalID, 7)
		require.NoError(s.T(), err)
		assert.True(s.T(), result.Granted)
		require.NotNil(s.T(), result.NewExpectedReturnDate)
		assert.Equal(s.T(), date(2024, 1, 22), *result.NewExpectedReturnDate)

		result, err = s.rentals.Extend(context.Background(), member, rentalID, 7)
		require.NoError(s.T(), err)
		assert.True(s.T(), result.Granted)
		assert.Equal(s.T(), date(2024, 1, 29), *result.NewExpectedReturnDate)
		assert.Equal(s.T(), 2, s.store.rentals[rentalID].extensionCount)

		// The third degrades into an approval request.
		result, err = s.rentals.Extend(context.Background(), member, rentalID, 7)
		require.NoError(s.T(), err)
		assert.False(s.T(), result.Granted)
		assert.True(s.T(), result.NeedsApproval)
		require.NotNil(s.T(), result.RequestID)

		req := s.store.requests[*result.RequestID]
		require.NotNil(s.T(), req)
		assert.Equal(s.T(), rentalID, req.rentalID)
		assert.Equal(s.T(), 7, req.requestedDays)
		assert.Equal(s.T(), extension.StatusPending, req.status)

		// The ledger did not move.
		assert.Equal(s.T(), date(2024, 1, 29), s.store.rentals[rentalID].expectedReturnDate)
		assert.Equal(s.T(), 2, s.store.rentals[rentalID].extensionCount)
	})

	s.Run("second escalation while one is pending files nothing new", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		for i := 0; i < 2; i++ {
			_, err = s.rentals.Extend(context.Background(), member, view.ID, 7)
			require.NoError(s.T(), err)
		}
		first, err := s.rentals.Extend(context.Background(), member, view.ID, 7)
		require.NoError(s.T(), err)
		require.NotNil(s.T(), first.RequestID)

		second, err := s.rentals.Extend(context.Background(), member, view.ID, 5)
		require.NoError(s.T(), err)
		assert.True(s.T(), second.NeedsApproval)
		assert.Nil(s.T(), second.RequestID)
		assert.Len(s.T(), s.store.requests, 1)
	})

	s.Run("non-positive days", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		_, err = s.rentals.Extend(context.Background(), member, view.ID, 0)
		assert.ErrorIs(s.T(), err, commands.ErrValidation)
	})

	s.Run("returned rental cannot be extended", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)
		_, err = s.rentals.Return(context.Background(), member, view.ID)
		require.NoError(s.T(), err)

		_, err = s.rentals.Extend(context.Background(), member, view.ID, 7)
		assert.ErrorIs(s.T(), err, commands.ErrRentalNotActive)
	})

	s.Run("member cannot extend someone else's rental", func() {
		view, err := s.rentals.Checkout(context.Background(), member, member.UserID, 10, 0)
		require.NoError(s.T(), err)

		_, err = s.rentals.Extend(context.Background(), otherUser, view.ID, 7)
		assert.ErrorIs(s.T(), err, commands.ErrNotRentalOwner)
	})

	s.Run("unknown rental", func() {
		_, err := s.rentals.Extend(context.Background(), member, 404, 7)
		assert.ErrorIs(s.T(), err, commands.ErrRentalNotFound)
	})
}
