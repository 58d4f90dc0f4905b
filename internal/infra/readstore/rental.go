package readstore

import (
	"context"
	"time"

	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/pkg/pgconv"
	"library-lending/internal/usecase/queries"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dialectPostgres = "postgres"

type RentalReadStore struct {
	db db.DBTX
}

func NewRentalReadStore(dbtx db.DBTX) queries.RentalReadStore {
	return &RentalReadStore{db: dbtx}
}

func rentalSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("rentals").As("r")).
		Join(goqu.T("book_copies").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("r.book_copy_id")})).
		Join(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("r.user_id")})).
		Select(
			goqu.I("r.id"), goqu.I("r.user_id"), goqu.I("u.username"),
			goqu.I("r.book_copy_id"), goqu.I("b.title"), goqu.I("b.author"),
			goqu.I("r.rent_date"), goqu.I("r.expected_return_date"), goqu.I("r.return_date"),
			goqu.I("r.status"), goqu.I("r.extension_count"),
		).
		Prepared(true)
}

func (s *RentalReadStore) FindByID(ctx context.Context, id int64) (*queries.RentalView, error) {
	sql, args, err := rentalSelect().Where(goqu.Ex{"r.id": id}).ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build rental query", err)
	}

	row := s.db.QueryRow(ctx, sql, args...)
	view, err := scanRentalView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("rental not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find rental by id", err)
	}
	return view, nil
}

func (s *RentalReadStore) FindActiveByUser(ctx context.Context, userID int64) ([]*queries.RentalView, error) {
	sql, args, err := rentalSelect().
		Where(goqu.Ex{"r.user_id": userID, "r.status": "ACTIVE"}).
		Order(goqu.I("r.rent_date").Desc(), goqu.I("r.id").Desc()).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build rental query", err)
	}
	return s.queryViews(ctx, sql, args, "failed to find active rentals by user")
}

func (s *RentalReadStore) FindAllActive(ctx context.Context) ([]*queries.RentalView, error) {
	sql, args, err := rentalSelect().
		Where(goqu.Ex{"r.status": "ACTIVE"}).
		Order(goqu.I("r.rent_date").Desc(), goqu.I("r.id").Desc()).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build rental query", err)
	}
	return s.queryViews(ctx, sql, args, "failed to find active rentals")
}

func (s *RentalReadStore) FindOverdue(ctx context.Context, asOf time.Time) ([]*queries.RentalView, error) {
	sql, args, err := rentalSelect().
		Where(
			goqu.Ex{"r.status": "ACTIVE"},
			goqu.I("r.expected_return_date").Lt(pgconv.DateToPgtype(asOf)),
		).
		Order(goqu.I("r.expected_return_date").Asc(), goqu.I("r.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build rental query", err)
	}
	return s.queryViews(ctx, sql, args, "failed to find overdue rentals")
}

func (s *RentalReadStore) queryViews(ctx context.Context, sql string, args []any, errMsg string) ([]*queries.RentalView, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(errMsg, err)
	}
	defer rows.Close()

	var views []*queries.RentalView
	for rows.Next() {
		view, scanErr := scanRentalView(rows)
		if scanErr != nil {
			return nil, infra.WrapRepoErr(errMsg, scanErr)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(errMsg, err)
	}
	return views, nil
}

func scanRentalView(row pgx.Row) (*queries.RentalView, error) {
	var (
		view               queries.RentalView
		username           string
		rentDate           pgtype.Date
		expectedReturnDate pgtype.Date
		returnDate         pgtype.Date
	)
	err := row.Scan(
		&view.ID, &view.UserID, &username,
		&view.BookCopyID, &view.BookTitle, &view.BookAuthor,
		&rentDate, &expectedReturnDate, &returnDate,
		&view.Status, &view.ExtensionCount,
	)
	if err != nil {
		return nil, err
	}
	view.Username = &username
	view.RentDate = pgconv.DateFromPgtype(rentDate)
	view.ExpectedReturnDate = pgconv.DateFromPgtype(expectedReturnDate)
	view.ReturnDate = pgconv.DatePtrFromPgtype(returnDate)
	return &view, nil
}
