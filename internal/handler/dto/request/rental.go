package request

type CheckoutRequest struct {
	BookCopyID int64 `json:"book_copy_id" binding:"required"`
	// UserID lets a librarian check out on a patron's behalf; members leave it
	// empty and rent for themselves.
	UserID     *int64 `json:"user_id,omitempty"`
	PeriodDays int    `json:"period_days,omitempty" binding:"omitempty,min=1"`
}

type ExtendRequest struct {
	RequestedDays int `json:"requested_days" binding:"required,min=1"`
}
