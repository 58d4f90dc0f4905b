package repository

import (
	"context"

	"library-lending/internal/domain/rental"
	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/pkg/pgconv"
	"library-lending/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgtype"
)

type RentalRepository struct{}

func NewRentalRepository() shared.RentalRepository {
	return &RentalRepository{}
}

func (r *RentalRepository) Create(ctx context.Context, dbtx db.DBTX, entity *rental.Rental) (int64, error) {
	const query = `
		INSERT INTO rentals (user_id, book_copy_id, rent_date, expected_return_date, status, extension_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := dbtx.QueryRow(ctx, query,
		entity.UserID(),
		entity.BookCopyID(),
		pgconv.DateToPgtype(entity.RentDate()),
		pgconv.DateToPgtype(entity.ExpectedReturnDate()),
		string(entity.Status()),
		entity.ExtensionCount(),
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create rental", err)
	}
	return id, nil
}

func (r *RentalRepository) FindForUpdate(ctx context.Context, dbtx db.DBTX, id int64) (*rental.Rental, error) {
	const query = `
		SELECT id, user_id, book_copy_id, rent_date, expected_return_date, return_date, status, extension_count
		FROM rentals
		WHERE id = $1
		FOR UPDATE`

	var (
		rentalID           int64
		userID             int64
		bookCopyID         int64
		rentDate           pgtype.Date
		expectedReturnDate pgtype.Date
		returnDate         pgtype.Date
		status             string
		extensionCount     int
	)
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&rentalID, &userID, &bookCopyID,
		&rentDate, &expectedReturnDate, &returnDate,
		&status, &extensionCount,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("rental not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock rental", err)
	}

	entity, err := rental.ReconstructRental(
		rentalID, userID, bookCopyID,
		pgconv.DateFromPgtype(rentDate),
		pgconv.DateFromPgtype(expectedReturnDate),
		pgconv.DatePtrFromPgtype(returnDate),
		rental.Status(status),
		extensionCount,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reconstruct rental", err)
	}
	return entity, nil
}

func (r *RentalRepository) Update(ctx context.Context, dbtx db.DBTX, entity *rental.Rental) error {
	const query = `
		UPDATE rentals
		SET expected_return_date = $2, return_date = $3, status = $4, extension_count = $5
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query,
		entity.ID(),
		pgconv.DateToPgtype(entity.ExpectedReturnDate()),
		pgconv.DatePtrToPgtype(entity.ReturnDate()),
		string(entity.Status()),
		entity.ExtensionCount(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update rental", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("rental not found", nil, infra.KindNotFound)
	}
	return nil
}
