package queries

import (
	"time"
)

// Read models (DTO for read side)

type RentalView struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	Username           *string    `json:"username,omitempty"`
	BookCopyID         int64      `json:"book_copy_id"`
	BookTitle          string     `json:"book_title"`
	BookAuthor         string     `json:"book_author"`
	RentDate           time.Time  `json:"rent_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ReturnDate         *time.Time `json:"return_date,omitempty"`
	Status             string     `json:"status"`
	ExtensionCount     int        `json:"extension_count"`

	// Derived from "today" at query time, never persisted.
	DueState        string `json:"due_state"`
	DaysUntilReturn int    `json:"days_until_return"`
	DaysOverdue     int    `json:"days_overdue"`
}

type ExtensionRequestView struct {
	ID                int64      `json:"id"`
	RentalID          int64      `json:"rental_id"`
	UserID            int64      `json:"user_id"`
	Username          *string    `json:"username,omitempty"`
	BookTitle         *string    `json:"book_title,omitempty"`
	BookAuthor        *string    `json:"book_author,omitempty"`
	RequestedDays     int        `json:"requested_days"`
	RequestDate       time.Time  `json:"request_date"`
	Status            string     `json:"status"`
	AdminDecisionDate *time.Time `json:"admin_decision_date,omitempty"`
	AdminID           *int64     `json:"admin_id,omitempty"`
	AdminComment      *string    `json:"admin_comment,omitempty"`
}

type AuthorizedUserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type BookCopyView struct {
	ID        int64  `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}
