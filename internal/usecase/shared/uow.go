package shared

import (
	"context"
	"time"

	"library-lending/internal/domain/extension"
	"library-lending/internal/domain/rental"
	"library-lending/internal/domain/user"
	"library-lending/internal/infra/db"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}

type Tx interface {
	Rentals() RentalRepository
	Extensions() ExtensionRequestRepository
	Copies() BookCopyRepository
	Users() UserRepository
	DB() db.DBTX
}

type RentalRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, r *rental.Rental) (int64, error)
	// FindForUpdate locks the row for the rest of the transaction.
	FindForUpdate(ctx context.Context, dbtx db.DBTX, id int64) (*rental.Rental, error)
	Update(ctx context.Context, dbtx db.DBTX, r *rental.Rental) error
}

type ExtensionRequestRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, req *extension.Request) (int64, error)
	FindForUpdate(ctx context.Context, dbtx db.DBTX, id int64) (*extension.Request, error)
	Update(ctx context.Context, dbtx db.DBTX, req *extension.Request) error
	HasPendingForRental(ctx context.Context, dbtx db.DBTX, rentalID int64) (bool, error)
	DeleteDecidedBefore(ctx context.Context, dbtx db.DBTX, cutoff time.Time) (int64, error)
}

type BookCopyRepository interface {
	// Reserve flips the copy to unavailable; it is the compare-and-swap that
	// makes concurrent checkouts of the same copy lose cleanly.
	Reserve(ctx context.Context, dbtx db.DBTX, copyID int64) error
	Release(ctx context.Context, dbtx db.DBTX, copyID int64) error
}

type UserRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, u *user.User) (int64, error)
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID int64) error
}
