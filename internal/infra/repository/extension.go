package repository

import (
	"context"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/pkg/pgconv"
	"library-lending/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgtype"
)

type ExtensionRequestRepository struct{}

func NewExtensionRequestRepository() shared.ExtensionRequestRepository {
	return &ExtensionRequestRepository{}
}

func (r *ExtensionRequestRepository) Create(ctx context.Context, dbtx db.DBTX, req *extension.Request) (int64, error) {
	const query = `
		INSERT INTO extension_requests (rental_id, user_id, requested_days, request_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := dbtx.QueryRow(ctx, query,
		req.RentalID(),
		req.UserID(),
		req.RequestedDays(),
		pgconv.TimeToPgtype(req.RequestDate()),
		string(req.Status()),
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create extension request", err)
	}
	return id, nil
}

func (r *ExtensionRequestRepository) FindForUpdate(ctx context.Context, dbtx db.DBTX, id int64) (*extension.Request, error) {
	const query = `
		SELECT id, rental_id, user_id, requested_days, request_date, status,
		       admin_decision_date, admin_id, admin_comment
		FROM extension_requests
		WHERE id = $1
		FOR UPDATE`

	var (
		requestID         int64
		rentalID          int64
		userID            int64
		requestedDays     int
		requestDate       pgtype.Timestamptz
		status            string
		adminDecisionDate pgtype.Timestamptz
		adminID           pgtype.Int8
		adminComment      pgtype.Text
	)
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&requestID, &rentalID, &userID,
		&requestedDays, &requestDate, &status,
		&adminDecisionDate, &adminID, &adminComment,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("extension request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock extension request", err)
	}

	req, err := extension.ReconstructRequest(
		requestID, rentalID, userID,
		requestedDays,
		pgconv.TimeFromPgtype(requestDate),
		extension.Status(status),
		pgconv.TimePtrFromPgtype(adminDecisionDate),
		pgconv.Int64PtrFromPgtype(adminID),
		pgconv.StringPtrFromPgtype(adminComment),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reconstruct extension request", err)
	}
	return req, nil
}

func (r *ExtensionRequestRepository) Update(ctx context.Context, dbtx db.DBTX, req *extension.Request) error {
	const query = `
		UPDATE extension_requests
		SET status = $2, admin_decision_date = $3, admin_id = $4, admin_comment = $5
		WHERE id = $1`

	var decisionDate pgtype.Timestamptz
	if d := req.AdminDecisionDate(); d != nil {
		decisionDate = pgconv.TimeToPgtype(*d)
	}

	tag, err := dbtx.Exec(ctx, query,
		req.ID(),
		string(req.Status()),
		decisionDate,
		pgconv.Int64PtrToPgtype(req.AdminID()),
		pgconv.StringPtrToPgtype(req.AdminComment()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update extension request", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("extension request not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ExtensionRequestRepository) HasPendingForRental(ctx context.Context, dbtx db.DBTX, rentalID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM extension_requests WHERE rental_id = $1 AND status = 'PENDING'
		)`

	var exists bool
	if err := dbtx.QueryRow(ctx, query, rentalID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check pending extension request", err)
	}
	return exists, nil
}

func (r *ExtensionRequestRepository) DeleteDecidedBefore(ctx context.Context, dbtx db.DBTX, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM extension_requests
		WHERE status <> 'PENDING' AND admin_decision_date < $1`

	tag, err := dbtx.Exec(ctx, query, pgconv.TimeToPgtype(cutoff))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge decided extension requests", err)
	}
	return tag.RowsAffected(), nil
}
