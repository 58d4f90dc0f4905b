//go:build unit

package commands_test

import (
	"context"
	"errors"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/domain/rental"
	"library-lending/internal/domain/user"
	"library-lending/internal/infra"
	"library-lending/internal/infra/db"
	"library-lending/internal/usecase/queries"
	"library-lending/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory stand-ins for the postgres repositories. Within clones the store
// and commits the clone on success, so a failed transaction leaves the
// original untouched, matching real rollback behavior.

type rentalRow struct {
	id                 int64
	userID             int64
	bookCopyID         int64
	rentDate           time.Time
	expectedReturnDate time.Time
	returnDate         *time.Time
	status             rental.Status
	extensionCount     int
}

type requestRow struct {
	id                int64
	rentalID          int64
	userID            int64
	requestedDays     int
	requestDate       time.Time
	status            extension.Status
	adminDecisionDate *time.Time
	adminID           *int64
	adminComment      *string
}

type copyRow struct {
	id        int64
	title     string
	author    string
	available bool
}

type memStore struct {
	rentals       map[int64]*rentalRow
	requests      map[int64]*requestRow
	copies        map[int64]*copyRow
	nextRentalID  int64
	nextRequestID int64
}

func newMemStore() *memStore {
	return &memStore{
		rentals:       make(map[int64]*rentalRow),
		requests:      make(map[int64]*requestRow),
		copies:        make(map[int64]*copyRow),
		nextRentalID:  1,
		nextRequestID: 1,
	}
}

func (s *memStore) addCopy(id int64, title, author string, available bool) {
	s.copies[id] = &copyRow{id: id, title: title, author: author, available: available}
}

func (s *memStore) clone() *memStore {
	out := newMemStore()
	out.nextRentalID = s.nextRentalID
	out.nextRequestID = s.nextRequestID
	for id, r := range s.rentals {
		cp := *r
		out.rentals[id] = &cp
	}
	for id, r := range s.requests {
		cp := *r
		out.requests[id] = &cp
	}
	for id, c := range s.copies {
		cp := *c
		out.copies[id] = &cp
	}
	return out
}

type noopDBTX struct{}

func (noopDBTX) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not backed by a database")
}

func (noopDBTX) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not backed by a database")
}

func (noopDBTX) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

type fakeUoW struct {
	store *memStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	work := u.store.clone()
	if err := fn(ctx, &fakeTx{store: work}); err != nil {
		return err
	}
	*u.store = *work
	return nil
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, noopDBTX{})
}

type fakeTx struct {
	store *memStore
}

func (t *fakeTx) Rentals() shared.RentalRepository              { return &fakeRentalRepo{t.store} }
func (t *fakeTx) Extensions() shared.ExtensionRequestRepository { return &fakeExtensionRepo{t.store} }
func (t *fakeTx) Copies() shared.BookCopyRepository             { return &fakeCopyRepo{t.store} }
func (t *fakeTx) Users() shared.UserRepository                  { return &fakeUserRepo{} }
func (t *fakeTx) DB() db.DBTX                                   { return noopDBTX{} }

type fakeRentalRepo struct {
	store *memStore
}

func (r *fakeRentalRepo) Create(_ context.Context, _ db.DBTX, entity *rental.Rental) (int64, error) {
	// Emulates the partial unique index on (book_copy_id) WHERE status='ACTIVE'.
	for _, row := range r.store.rentals {
		if row.bookCopyID == entity.BookCopyID() && row.status == rental.StatusActive {
			return 0, infra.WrapRepoErr("active rental exists for copy", nil, infra.KindDuplicateKey)
		}
	}

	id := r.store.nextRentalID
	r.store.nextRentalID++
	r.store.rentals[id] = &rentalRow{
		id:                 id,
		userID:             entity.UserID(),
		bookCopyID:         entity.BookCopyID(),
		rentDate:           entity.RentDate(),
		expectedReturnDate: entity.ExpectedReturnDate(),
		returnDate:         entity.ReturnDate(),
		status:             entity.Status(),
		extensionCount:     entity.ExtensionCount(),
	}
	return id, nil
}

func (r *fakeRentalRepo) FindForUpdate(_ context.Context, _ db.DBTX, id int64) (*rental.Rental, error) {
	row, ok := r.store.rentals[id]
	if !ok {
		return nil, infra.WrapRepoErr("rental not found", nil, infra.KindNotFound)
	}
	return rental.ReconstructRental(
		row.id, row.userID, row.bookCopyID,
		row.rentDate, row.expectedReturnDate, row.returnDate,
		row.status, row.extensionCount,
	)
}

func (r *fakeRentalRepo) Update(_ context.Context, _ db.DBTX, entity *rental.Rental) error {
	row, ok := r.store.rentals[entity.ID()]
	if !ok {
		return infra.WrapRepoErr("rental not found", nil, infra.KindNotFound)
	}
	row.expectedReturnDate = entity.ExpectedReturnDate()
	row.returnDate = entity.ReturnDate()
	row.status = entity.Status()
	row.extensionCount = entity.ExtensionCount()
	return nil
}

type fakeExtensionRepo struct {
	store *memStore
}

func (r *fakeExtensionRepo) Create(_ context.Context, _ db.DBTX, req *extension.Request) (int64, error) {
	for _, row := range r.store.requests {
		if row.rentalID == req.RentalID() && row.status == extension.StatusPending {
			return 0, infra.WrapRepoErr("pending request exists for rental", nil, infra.KindDuplicateKey)
		}
	}

	id := r.store.nextRequestID
	r.store.nextRequestID++
	r.store.requests[id] = &requestRow{
		id:            id,
		rentalID:      req.RentalID(),
		userID:        req.UserID(),
		requestedDays: req.RequestedDays(),
		requestDate:   req.RequestDate(),
		status:        req.Status(),
	}
	return id, nil
}

func (r *fakeExtensionRepo) FindForUpdate(_ context.Context, _ db.DBTX, id int64) (*extension.Request, error) {
	row, ok := r.store.requests[id]
	if !ok {
		return nil, infra.WrapRepoErr("extension request not found", nil, infra.KindNotFound)
	}
	return extension.ReconstructRequest(
		row.id, row.rentalID, row.userID,
		row.requestedDays, row.requestDate, row.status,
		row.adminDecisionDate, row.adminID, row.adminComment,
	)
}

func (r *fakeExtensionRepo) Update(_ context.Context, _ db.DBTX, req *extension.Request) error {
	row, ok := r.store.requests[req.ID()]
	if !ok {
		return infra.WrapRepoErr("extension request not found", nil, infra.KindNotFound)
	}
	row.status = req.Status()
	row.adminDecisionDate = req.AdminDecisionDate()
	row.adminID = req.AdminID()
	row.adminComment = req.AdminComment()
	return nil
}

func (r *fakeExtensionRepo) HasPendingForRental(_ context.Context, _ db.DBTX, rentalID int64) (bool, error) {
	for _, row := range r.store.requests {
		if row.rentalID == rentalID && row.status == extension.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeExtensionRepo) DeleteDecidedBefore(_ context.Context, _ db.DBTX, cutoff time.Time) (int64, error) {
	var purged int64
	for id, row := range r.store.requests {
		if row.status != extension.StatusPending && row.adminDecisionDate != nil && row.adminDecisionDate.Before(cutoff) {
			delete(r.store.requests, id)
			purged++
		}
	}
	return purged, nil
}

type fakeCopyRepo struct {
	store *memStore
}

func (r *fakeCopyRepo) Reserve(_ context.Context, _ db.DBTX, copyID int64) error {
	row, ok := r.store.copies[copyID]
	if !ok {
		return infra.WrapRepoErr("book copy not found", nil, infra.KindNotFound)
	}
	if !row.available {
		return infra.WrapRepoErr("book copy is not available", nil, infra.KindConflict)
	}
	row.available = false
	return nil
}

func (r *fakeCopyRepo) Release(_ context.Context, _ db.DBTX, copyID int64) error {
	row, ok := r.store.copies[copyID]
	if !ok {
		return infra.WrapRepoErr("book copy not found", nil, infra.KindNotFound)
	}
	row.available = true
	return nil
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) Create(context.Context, db.DBTX, *user.User) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakeUserRepo) UpdateLastLogin(context.Context, db.DBTX, int64) error {
	return nil
}

// fakeRentalReadStore serves the read-after-write queries over the same store.
type fakeRentalReadStore struct {
	store *memStore
}

func (s *fakeRentalReadStore) FindByID(_ context.Context, id int64) (*queries.RentalView, error) {
	row, ok := s.store.rentals[id]
	if !ok {
		return nil, infra.WrapRepoErr("rental not found", nil, infra.KindNotFound)
	}
	return s.toView(row), nil
}

func (s *fakeRentalReadStore) FindActiveByUser(_ context.Context, userID int64) ([]*queries.RentalView, error) {
	var out []*queries.RentalView
	for _, row := range s.store.rentals {
		if row.userID == userID && row.status == rental.StatusActive {
			out = append(out, s.toView(row))
		}
	}
	return out, nil
}

func (s *fakeRentalReadStore) FindAllActive(_ context.Context) ([]*queries.RentalView, error) {
	var out []*queries.RentalView
	for _, row := range s.store.rentals {
		if row.status == rental.StatusActive {
			out = append(out, s.toView(row))
		}
	}
	return out, nil
}

func (s *fakeRentalReadStore) FindOverdue(_ context.Context, asOf time.Time) ([]*queries.RentalView, error) {
	var out []*queries.RentalView
	for _, row := range s.store.rentals {
		if row.status == rental.StatusActive && row.expectedReturnDate.Before(asOf) {
			out = append(out, s.toView(row))
		}
	}
	return out, nil
}

func (s *fakeRentalReadStore) toView(row *rentalRow) *queries.RentalView {
	view := &queries.RentalView{
		ID:                 row.id,
		UserID:             row.userID,
		BookCopyID:         row.bookCopyID,
		RentDate:           row.rentDate,
		ExpectedReturnDate: row.expectedReturnDate,
		ReturnDate:         row.returnDate,
		Status:             string(row.status),
		ExtensionCount:     row.extensionCount,
	}
	if c, ok := s.store.copies[row.bookCopyID]; ok {
		view.BookTitle = c.title
		view.BookAuthor = c.author
	}
	return view
}
