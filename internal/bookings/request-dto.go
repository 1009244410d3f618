package bookings

import "time"

// reservation payload
type CreateBookingRequest struct {
	LotID          string    `json:"lot_id" validate:"required,uuid"`
	SlotIdentifier string    `json:"slot_identifier" validate:"required,min=1,max=16"`
	VehicleClass   string    `json:"vehicle_class" validate:"required"`
	VehicleNumber  string    `json:"vehicle_number" validate:"required,min=2,max=20"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
}

// payment confirmation payload
type ConfirmPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CARD CASH WALLET"`
}

// listing filters for user and admin booking queries
type BookingListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	LotID  string `form:"lot_id"`
}
