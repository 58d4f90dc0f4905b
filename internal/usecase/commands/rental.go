package commands

import (
	"context"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/domain/rental"
	"library-lending/internal/infra"
	"library-lending/internal/pkg/clock"
	"library-lending/internal/pkg/errs"
	"library-lending/internal/usecase/queries"
	"library-lending/internal/usecase/shared"
)

var (
	ErrRentalNotFound        = errs.New("rental not found")
	ErrCopyNotFound          = errs.New("book copy not found")
	ErrCopyUnavailable       = errs.New("book copy is not available")
	ErrCopyConflict          = errs.New("book copy was checked out concurrently")
	ErrRentalNotActive       = errs.New("rental is not active")
	ErrRentalAlreadyReturned = errs.New("rental already returned")
	ErrNotRentalOwner        = errs.New("rental belongs to another user")
	ErrValidation            = errs.New("invalid input")
)

const (
	msgExtensionGranted  = "rental extended"
	msgApprovalSubmitted = "extension submitted for librarian approval"
	msgApprovalPending   = "an extension request for this rental is already pending"
)

// ExtensionResult reports the two-tier escalation outcome: either the rental
// was extended in place, or a request was filed (or found already filed) for
// librarian approval. Hitting the approval tier is not an error.
type ExtensionResult struct {
	Granted               bool       `json:"granted"`
	NeedsApproval         bool       `json:"needs_approval"`
	RequestID             *int64     `json:"request_id,omitempty"`
	NewExpectedReturnDate *time.Time `json:"new_expected_return_date,omitempty"`
	Message               string     `json:"message"`
}

type RentalCommands interface {
	Checkout(ctx context.Context, actor shared.Actor, userID, copyID int64, periodDays int) (*queries.RentalView, error)
	Return(ctx context.Context, actor shared.Actor, rentalID int64) (*queries.RentalView, error)
	Extend(ctx context.Context, actor shared.Actor, rentalID int64, requestedDays int) (*ExtensionResult, error)
}

type rentalCommandsImpl struct {
	uow           shared.UnitOfWork
	rentalQueries queries.RentalQueries
	clock         clock.Clock
}

func NewRentalCommands(uow shared.UnitOfWork, rentalQueries queries.RentalQueries, clk clock.Clock) RentalCommands {
	return &rentalCommandsImpl{
		uow:           uow,
		rentalQueries: rentalQueries,
		clock:         clk,
	}
}

// Checkout reserves the copy and opens the rental in one transaction; the
// availability flip and the ledger insert land together or not at all.
func (c *rentalCommandsImpl) Checkout(ctx context.Context, actor shared.Actor, userID, copyID int64, periodDays int) (*queries.RentalView, error) {
	if !actor.IsLibrarian() && actor.UserID != userID {
		return nil, ErrNotRentalOwner
	}
	if periodDays == 0 {
		periodDays = rental.DefaultPeriodDays
	}
	if periodDays < 0 {
		return nil, errs.Mark(rental.ErrInvalidPeriod, ErrValidation)
	}

	var rentalID int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if reserveErr := tx.Copies().Reserve(ctx, tx.DB(), copyID); reserveErr != nil {
			switch {
			case infra.IsKind(reserveErr, infra.KindNotFound):
				return ErrCopyNotFound
			case infra.IsKind(reserveErr, infra.KindConflict):
				return ErrCopyUnavailable
			}
			return reserveErr
		}

		entity, domainErr := rental.NewRental(userID, copyID, clock.Today(c.clock), periodDays)
		if domainErr != nil {
			return errs.Mark(domainErr, ErrValidation)
		}

		id, createErr := tx.Rentals().Create(ctx, tx.DB(), entity)
		if createErr != nil {
			// The partial unique index backs up the availability CAS; losing
			// here means a concurrent checkout won the same copy.
			if infra.IsKind(createErr, infra.KindDuplicateKey) {
				return ErrCopyConflict
			}
			return createErr
		}
		rentalID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.rentalQueries.GetByID(ctx, rentalID)
}

// Return closes the rental and frees the copy atomically.
func (c *rentalCommandsImpl) Return(ctx context.Context, actor shared.Actor, rentalID int64) (*queries.RentalView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, findErr := tx.Rentals().FindForUpdate(ctx, tx.DB(), rentalID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrRentalNotFound
			}
			return findErr
		}

		if !actor.IsLibrarian() && entity.UserID() != actor.UserID {
			return ErrNotRentalOwner
		}

		if markErr := entity.MarkReturned(clock.Today(c.clock)); markErr != nil {
			return errs.Mark(markErr, ErrRentalAlreadyReturned)
		}

		if updateErr := tx.Rentals().Update(ctx, tx.DB(), entity); updateErr != nil {
			return updateErr
		}

		return tx.Copies().Release(ctx, tx.DB(), entity.BookCopyID())
	})
	if err != nil {
		return nil, err
	}

	return c.rentalQueries.GetByID(ctx, rentalID)
}

// Extend applies the self-extension cap: below the cap the rental is extended
// directly, above it the call degrades into filing an approval request.
func (c *rentalCommandsImpl) Extend(ctx context.Context, actor shared.Actor, rentalID int64, requestedDays int) (*ExtensionResult, error) {
	if requestedDays <= 0 {
		return nil, errs.Mark(extension.ErrInvalidRequestedDays, ErrValidation)
	}

	var result *ExtensionResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, findErr := tx.Rentals().FindForUpdate(ctx, tx.DB(), rentalID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrRentalNotFound
			}
			return findErr
		}

		if !actor.IsLibrarian() && entity.UserID() != actor.UserID {
			return ErrNotRentalOwner
		}
		if !entity.IsActive() {
			return ErrRentalNotActive
		}

		if entity.CanSelfExtend() {
			if extendErr := entity.Extend(requestedDays); extendErr != nil {
				return errs.Mark(extendErr, ErrRentalNotActive)
			}
			if updateErr := tx.Rentals().Update(ctx, tx.DB(), entity); updateErr != nil {
				return updateErr
			}
			newDate := entity.ExpectedReturnDate()
			result = &ExtensionResult{
				Granted:               true,
				NewExpectedReturnDate: &newDate,
				Message:               msgExtensionGranted,
			}
			return nil
		}

		return c.fileApprovalRequest(ctx, tx, entity, requestedDays, &result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *rentalCommandsImpl) fileApprovalRequest(ctx context.Context, tx shared.Tx, entity *rental.Rental, requestedDays int, result **ExtensionResult) error {
	pending, checkErr := tx.Extensions().HasPendingForRental(ctx, tx.DB(), entity.ID())
	if checkErr != nil {
		return checkErr
	}
	if pending {
		*result = &ExtensionResult{NeedsApproval: true, Message: msgApprovalPending}
		return nil
	}

	request, domainErr := extension.NewRequest(entity.ID(), entity.UserID(), requestedDays, c.clock.Now())
	if domainErr != nil {
		return errs.Mark(domainErr, ErrValidation)
	}

	requestID, createErr := tx.Extensions().Create(ctx, tx.DB(), request)
	if createErr != nil {
		// Lost the pending-uniqueness race; same outcome as finding one.
		if infra.IsKind(createErr, infra.KindDuplicateKey) {
			*result = &ExtensionResult{NeedsApproval: true, Message: msgApprovalPending}
			return nil
		}
		return createErr
	}

	*result = &ExtensionResult{
		NeedsApproval: true,
		RequestID:     &requestID,
		Message:       msgApprovalSubmitted,
	}
	return nil
}
