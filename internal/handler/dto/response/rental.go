package response

import (
	"time"

	"library-lending/internal/usecase/queries"
)

type RentalResponse struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"userId"`
	Username           *string    `json:"username,omitempty"`
	BookCopyID         int64      `json:"bookCopyId"`
	BookTitle          string     `json:"bookTitle"`
	BookAuthor         string     `json:"bookAuthor"`
	RentDate           time.Time  `json:"rentDate"`
	ExpectedReturnDate time.Time  `json:"expectedReturnDate"`
	ReturnDate         *time.Time `json:"returnDate,omitempty"`
	Status             string     `json:"status"`
	ExtensionCount     int        `json:"extensionCount"`
	DueState           string     `json:"dueState"`
	DaysUntilReturn    int        `json:"daysUntilReturn"`
	DaysOverdue        int        `json:"daysOverdue"`
}

func FromRentalView(v *queries.RentalView) *RentalResponse {
	return &RentalResponse{
		ID:                 v.ID,
		UserID:             v.UserID,
		Username:           v.Username,
		BookCopyID:         v.BookCopyID,
		BookTitle:          v.BookTitle,
		BookAuthor:         v.BookAuthor,
		RentDate:           v.RentDate,
		ExpectedReturnDate: v.ExpectedReturnDate,
		ReturnDate:         v.ReturnDate,
		Status:             v.Status,
		ExtensionCount:     v.ExtensionCount,
		DueState:           v.DueState,
		DaysUntilReturn:    v.DaysUntilReturn,
		DaysOverdue:        v.DaysOverdue,
	}
}

func FromRentalViews(views []*queries.RentalView) []*RentalResponse {
	out := make([]*RentalResponse, len(views))
	for i, v := range views {
		out[i] = FromRentalView(v)
	}
	return out
}
