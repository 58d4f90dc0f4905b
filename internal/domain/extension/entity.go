package extension

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRequestedDays = errors.New("requested days must be positive")
	ErrInvalidStatus        = errors.New("invalid extension request status")
	ErrAlreadyDecided       = errors.New("extension request already decided")
	ErrCommentRequired      = errors.New("rejection comment is required")
)

// Request is a patron's ask for more time once self-extension is exhausted.
// Created PENDING; a librarian decision (approve/reject) is terminal.
type Request struct {
	id                int64
	rentalID          int64
	userID            int64
	requestedDays     int
	requestDate       time.Time
	status            Status
	adminDecisionDate *time.Time
	adminID           *int64
	adminComment      *string
}

func NewRequest(rentalID, userID int64, requestedDays int, requestDate time.Time) (*Request, error) {
	if requestedDays <= 0 {
		return nil, ErrInvalidRequestedDays
	}
	return &Request{
		rentalID:      rentalID,
		userID:        userID,
		requestedDays: requestedDays,
		requestDate:   requestDate,
		status:        StatusPending,
	}, nil
}

func ReconstructRequest(
	id, rentalID, userID int64,
	requestedDays int,
	requestDate time.Time,
	status Status,
	adminDecisionDate *time.Time,
	adminID *int64,
	adminComment *string,
) (*Request, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Request{
		id:                id,
		rentalID:          rentalID,
		userID:            userID,
		requestedDays:     requestedDays,
		requestDate:       requestDate,
		status:            status,
		adminDecisionDate: adminDecisionDate,
		adminID:           adminID,
		adminComment:      adminComment,
	}, nil
}

func (r *Request) ID() int64                     { return r.id }
func (r *Request) RentalID() int64               { return r.rentalID }
func (r *Request) UserID() int64                 { return r.userID }
func (r *Request) RequestedDays() int            { return r.requestedDays }
func (r *Request) RequestDate() time.Time        { return r.requestDate }
func (r *Request) Status() Status                { return r.status }
func (r *Request) AdminDecisionDate() *time.Time { return r.adminDecisionDate }
func (r *Request) AdminID() *int64               { return r.adminID }
func (r *Request) AdminComment() *string         { return r.adminComment }

func (r *Request) IsPending() bool {
	return r.status == StatusPending
}

// Approve stamps the decision fields and transitions PENDING -> APPROVED.
// The matching ledger extension is the caller's responsibility and must share
// the transaction.
func (r *Request) Approve(adminID int64, comment string, decidedAt time.Time) error {
	return r.decide(StatusApproved, adminID, comment, decidedAt)
}

// Reject requires a comment so the patron learns why.
func (r *Request) Reject(adminID int64, comment string, decidedAt time.Time) error {
	if strings.TrimSpace(comment) == "" {
		return ErrCommentRequired
	}
	return r.decide(StatusRejected, adminID, comment, decidedAt)
}

func (r *Request) decide(status Status, adminID int64, comment string, decidedAt time.Time) error {
	if r.status != StatusPending {
		return ErrAlreadyDecided
	}
	r.status = status
	r.adminDecisionDate = &decidedAt
	r.adminID = &adminID
	trimmed := strings.TrimSpace(comment)
	r.adminComment = &trimmed
	return nil
}
