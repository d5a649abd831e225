package refundreq

type CreateRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type DecideRequest struct {
	AdminNotes string `json:"admin_notes"`
}
