package request

type ApproveRequest struct {
	Comment string `json:"comment,omitempty"`
}

type RejectRequest struct {
	Comment string `json:"comment" binding:"required"`
}
