package readstore

import (
	"context"

	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/pkg/pgconv"
	"library-lending/internal/usecase/queries"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ExtensionReadStore struct {
	db db.DBTX
}

func NewExtensionReadStore(dbtx db.DBTX) queries.ExtensionReadStore {
	return &ExtensionReadStore{db: dbtx}
}

func extensionSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("extension_requests").As("e")).
		Join(goqu.T("rentals").As("r"), goqu.On(goqu.Ex{"r.id": goqu.I("e.rental_id")})).
		Join(goqu.T("book_copies").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("r.book_copy_id")})).
		Join(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("e.user_id")})).
		Select(
			goqu.I("e.id"), goqu.I("e.rental_id"), goqu.I("e.user_id"), goqu.I("u.username"),
			goqu.I("b.title"), goqu.I("b.author"),
			goqu.I("e.requested_days"), goqu.I("e.request_date"), goqu.I("e.status"),
			goqu.I("e.admin_decision_date"), goqu.I("e.admin_id"), goqu.I("e.admin_comment"),
		).
		Prepared(true)
}

func (s *ExtensionReadStore) FindByID(ctx context.Context, id int64) (*queries.ExtensionRequestView, error) {
	sql, args, err := extensionSelect().Where(goqu.Ex{"e.id": id}).ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build extension request query", err)
	}

	row := s.db.QueryRow(ctx, sql, args...)
	view, err := scanExtensionView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("extension request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find extension request by id", err)
	}
	return view, nil
}

func (s *ExtensionReadStore) FindPending(ctx context.Context) ([]*queries.ExtensionRequestView, error) {
	// Oldest first: the queue is worked in arrival order.
	sql, args, err := extensionSelect().
		Where(goqu.Ex{"e.status": "PENDING"}).
		Order(goqu.I("e.request_date").Asc(), goqu.I("e.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build extension request query", err)
	}
	return s.queryViews(ctx, sql, args, "failed to find pending extension requests")
}

func (s *ExtensionReadStore) FindByUser(ctx context.Context, userID int64) ([]*queries.ExtensionRequestView, error) {
	sql, args, err := extensionSelect().
		Where(goqu.Ex{"e.user_id": userID}).
		Order(goqu.I("e.request_date").Desc(), goqu.I("e.id").Desc()).
		ToSQL()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build extension request query", err)
	}
	return s.queryViews(ctx, sql, args, "failed to find extension requests by user")
}

func (s *ExtensionReadStore) CountPending(ctx context.Context) (int64, error) {
	sql, args, err := goqu.Dialect(dialectPostgres).
		From("extension_requests").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"status": "PENDING"}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build extension request query", err)
	}

	var count int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count pending extension requests", err)
	}
	return count, nil
}

func (s *ExtensionReadStore) queryViews(ctx context.Context, sql string, args []any, errMsg string) ([]*queries.ExtensionRequestView, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(errMsg, err)
	}
	defer rows.Close()

	var views []*queries.ExtensionRequestView
	for rows.Next() {
		view, scanErr := scanExtensionView(rows)
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

func scanExtensionView(row pgx.Row) (*queries.ExtensionRequestView, error) {
	var (
		view              queries.ExtensionRequestView
		username          string
		title             string
		author            string
		requestDate       pgtype.Timestamptz
		adminDecisionDate pgtype.Timestamptz
		adminID           pgtype.Int8
		adminComment      pgtype.Text
	)
	err := row.Scan(
		&view.ID, &view.RentalID, &view.UserID, &username,
		&title, &author,
		&view.RequestedDays, &requestDate, &view.Status,
		&adminDecisionDate, &adminID, &adminComment,
	)
	if err != nil {
		return nil, err
	}
	view.Username = &username
	view.BookTitle = &title
	view.BookAuthor = &author
	view.RequestDate = pgconv.TimeFromPgtype(requestDate)
	view.AdminDecisionDate = pgconv.TimePtrFromPgtype(adminDecisionDate)
	view.AdminID = pgconv.Int64PtrFromPgtype(adminID)
	view.AdminComment = pgconv.StringPtrFromPgtype(adminComment)
	return &view, nil
}
