package bookings

// PaginatedBookings wraps a booking listing with pagination metadata
type PaginatedBookings struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// PaymentInfo is the payment view returned after confirmation
type PaymentInfo struct {
	PaymentID     string `json:"payment_id"`
	BookingID     string `json:"booking_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}
