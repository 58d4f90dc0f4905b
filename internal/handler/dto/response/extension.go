package response

import (
	"time"

	"library-lending/internal/usecase/commands"
	"library-lending/internal/usecase/queries"
)

type ExtensionRequestResponse struct {
	ID                int64      `json:"id"`
	RentalID          int64      `json:"rentalId"`
	UserID            int64      `json:"userId"`
	Username          *string    `json:"username,omitempty"`
	BookTitle         *string    `json:"bookTitle,omitempty"`
	BookAuthor        *string    `json:"bookAuthor,omitempty"`
	RequestedDays     int        `json:"requestedDays"`
	RequestDate       time.Time  `json:"requestDate"`
	Status            string     `json:"status"`
	AdminDecisionDate *time.Time `json:"adminDecisionDate,omitempty"`
	AdminID           *int64     `json:"adminId,omitempty"`
	AdminComment      *string    `json:"adminComment,omitempty"`
}

func FromExtensionRequestView(v *queries.ExtensionRequestView) *ExtensionRequestResponse {
	return &ExtensionRequestResponse{
		ID:                v.ID,
		RentalID:          v.RentalID,
		UserID:            v.UserID,
		Username:          v.Username,
		BookTitle:         v.BookTitle,
		BookAuthor:        v.BookAuthor,
		RequestedDays:     v.RequestedDays,
		RequestDate:       v.RequestDate,
		Status:            v.Status,
		AdminDecisionDate: v.AdminDecisionDate,
		AdminID:           v.AdminID,
		AdminComment:      v.AdminComment,
	}
}

func FromExtensionRequestViews(views []*queries.ExtensionRequestView) []*ExtensionRequestResponse {
	out := make([]*ExtensionRequestResponse, len(views))
	for i, v := range views {
		out[i] = FromExtensionRequestView(v)
	}
	return out
}

type ExtendResponse struct {
	Granted               bool       `json:"granted"`
	NeedsApproval         bool       `json:"needsApproval"`
	RequestID             *int64     `json:"requestId,omitempty"`
	NewExpectedReturnDate *time.Time `json:"newExpectedReturnDate,omitempty"`
	Message               string     `json:"message"`
}

func FromExtensionResult(r *commands.ExtensionResult) *ExtendResponse {
	return &ExtendResponse{
		Granted:               r.Granted,
		NeedsApproval:         r.NeedsApproval,
		RequestID:             r.RequestID,
		NewExpectedReturnDate: r.NewExpectedReturnDate,
		Message:               r.Message,
	}
}

type PendingCountResponse struct {
	Count int64 `json:"count"`
}
