package commands

import (
	"context"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/infra"
	"library-lending/internal/pkg/clock"
	"library-lending/internal/pkg/errs"
	"library-lending/internal/usecase/shared"
)

var (
	ErrRequestNotFound   = errs.New("extension request not found")
	ErrRequestNotPending = errs.New("extension request already decided")
)

type ExtensionCommands interface {
	Approve(ctx context.Context, actor shared.Actor, requestID int64, comment string) error
	Reject(ctx context.Context, actor shared.Actor, requestID int64, comment string) error
	// PurgeDecidedBefore removes approved/rejected requests older than the
	// cutoff. Pending requests are never touched.
	PurgeDecidedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type extensionCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewExtensionCommands(uow shared.UnitOfWork, clk clock.Clock) ExtensionCommands {
	return &extensionCommandsImpl{uow: uow, clock: clk}
}

// Approve decides the request and extends the rental in the same transaction;
// if the rental cannot be extended (already returned), the decision rolls back
// and the request stays pending.
func (c *extensionCommandsImpl) Approve(ctx context.Context, actor shared.Actor, requestID int64, comment string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		request, err := c.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if approveErr := request.Approve(actor.UserID, comment, c.clock.Now()); approveErr != nil {
			return errs.Mark(approveErr, ErrRequestNotPending)
		}

		entity, findErr := tx.Rentals().FindForUpdate(ctx, tx.DB(), request.RentalID())
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrRentalNotFound
			}
			return findErr
		}

		if extendErr := entity.Extend(request.RequestedDays()); extendErr != nil {
			return errs.Mark(extendErr, ErrRentalNotActive)
		}

		if updateErr := tx.Rentals().Update(ctx, tx.DB(), entity); updateErr != nil {
			return updateErr
		}
		return tx.Extensions().Update(ctx, tx.DB(), request)
	})
}

// Reject records the decision without touching the rental. The domain layer
// refuses a blank comment.
func (c *extensionCommandsImpl) Reject(ctx context.Context, actor shared.Actor, requestID int64, comment string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		request, err := c.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if rejectErr := request.Reject(actor.UserID, comment, c.clock.Now()); rejectErr != nil {
			switch rejectErr {
			case extension.ErrCommentRequired:
				return errs.Mark(rejectErr, ErrValidation)
			case extension.ErrAlreadyDecided:
				return errs.Mark(rejectErr, ErrRequestNotPending)
			}
			return rejectErr
		}

		return tx.Extensions().Update(ctx, tx.DB(), request)
	})
}

func (c *extensionCommandsImpl) PurgeDecidedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, deleteErr := tx.Extensions().DeleteDecidedBefore(ctx, tx.DB(), cutoff)
		if deleteErr != nil {
			return deleteErr
		}
		purged = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func (c *extensionCommandsImpl) lockRequest(ctx context.Context, tx shared.Tx, requestID int64) (*extension.Request, error) {
	request, err := tx.Extensions().FindForUpdate(ctx, tx.DB(), requestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}
