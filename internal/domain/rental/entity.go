package rental

import (
	"errors"
	"time"
)

var (
	ErrInvalidPeriod      = errors.New("rental period must be positive")
	ErrInvalidStatus      = errors.New("invalid rental status")
	ErrAlreadyReturned    = errors.New("rental is already returned")
	ErrNotActive          = errors.New("rental is not active")
	ErrReturnBeforeRent   = errors.New("return date cannot precede rent date")
	ErrInvalidReturnState = errors.New("return date set on a rental that is not returned")
)

const (
	// DefaultPeriodDays is the loan period applied when the caller does not
	// pick one.
	DefaultPeriodDays = 14

	// MaxSelfExtensions caps how often a patron may extend a rental without
	// librarian approval. Counted per rental, over its whole lifetime.
	MaxSelfExtensions = 2

	// DueSoonWindowDays is the "return reminder" window used by DueState.
	DueSoonWindowDays = 3
)

// Rental is one checkout-to-return cycle for a (user, copy) pair.
type Rental struct {
	id                 int64
	userID             int64
	bookCopyID         int64
	rentDate           time.Time
	expectedReturnDate time.Time
	returnDate         *time.Time
	status             Status
	extensionCount     int
}

// NewRental starts an ACTIVE rental checked out today for periodDays.
// All dates are calendar dates (midnight UTC).
func NewRental(userID, bookCopyID int64, rentDate time.Time, periodDays int) (*Rental, error) {
	if periodDays <= 0 {
		return nil, ErrInvalidPeriod
	}
	rentDate = dateOnly(rentDate)
	return &Rental{
		userID:             userID,
		bookCopyID:         bookCopyID,
		rentDate:           rentDate,
		expectedReturnDate: rentDate.AddDate(0, 0, periodDays),
		status:             StatusActive,
		extensionCount:     0,
	}, nil
}

func ReconstructRental(
	id, userID, bookCopyID int64,
	rentDate, expectedReturnDate time.Time,
	returnDate *time.Time,
	status Status,
	extensionCount int,
) (*Rental, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if (returnDate != nil) != (status == StatusReturned) {
		return nil, ErrInvalidReturnState
	}
	return &Rental{
		id:                 id,
		userID:             userID,
		bookCopyID:         bookCopyID,
		rentDate:           dateOnly(rentDate),
		expectedReturnDate: dateOnly(expectedReturnDate),
		returnDate:         returnDate,
		status:             status,
		extensionCount:     extensionCount,
	}, nil
}

func (r *Rental) ID() int64                     { return r.id }
func (r *Rental) UserID() int64                 { return r.userID }
func (r *Rental) BookCopyID() int64             { return r.bookCopyID }
func (r *Rental) RentDate() time.Time           { return r.rentDate }
func (r *Rental) ExpectedReturnDate() time.Time { return r.expectedReturnDate }
func (r *Rental) ReturnDate() *time.Time        { return r.returnDate }
func (r *Rental) Status() Status                { return r.status }
func (r *Rental) ExtensionCount() int           { return r.extensionCount }

func (r *Rental) IsActive() bool {
	return r.status == StatusActive
}

// MarkReturned transitions ACTIVE -> RETURNED. The transition is terminal.
func (r *Rental) MarkReturned(returnDate time.Time) error {
	if r.status == StatusReturned {
		return ErrAlreadyReturned
	}
	returnDate = dateOnly(returnDate)
	if returnDate.Before(r.rentDate) {
		return ErrReturnBeforeRent
	}
	r.status = StatusReturned
	r.returnDate = &returnDate
	return nil
}

// Extend pushes the expected return date and bumps the extension counter.
// Used for self-service and librarian-approved extensions alike.
func (r *Rental) Extend(additionalDays int) error {
	if additionalDays <= 0 {
		return ErrInvalidPeriod
	}
	if r.status != StatusActive {
		return ErrNotActive
	}
	r.expectedReturnDate = r.expectedReturnDate.AddDate(0, 0, additionalDays)
	r.extensionCount++
	return nil
}

func (r *Rental) CanSelfExtend() bool {
	return r.extensionCount < MaxSelfExtensions
}

func (r *Rental) IsOverdue(today time.Time) bool {
	return r.status == StatusActive && dateOnly(today).After(r.expectedReturnDate)
}

// DaysUntilReturn floors at zero once the rental is overdue or returned;
// the signed value lives in DaysOverdue.
func (r *Rental) DaysUntilReturn(today time.Time) int {
	if r.status != StatusActive {
		return 0
	}
	days := daysBetween(dateOnly(today), r.expectedReturnDate)
	if days < 0 {
		return 0
	}
	return days
}

func (r *Rental) DaysOverdue(today time.Time) int {
	if r.status != StatusActive {
		return 0
	}
	days := daysBetween(r.expectedReturnDate, dateOnly(today))
	if days < 0 {
		return 0
	}
	return days
}

func (r *Rental) DueState(today time.Time) DueState {
	if r.status == StatusReturned {
		return DueStateReturned
	}
	if r.IsOverdue(today) {
		return DueStateOverdue
	}
	if r.DaysUntilReturn(today) <= DueSoonWindowDays {
		return DueStateDueSoon
	}
	return DueStateOnTime
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
