package request

type CreateBookingRequest struct {
	TripID        string   `json:"trip_id" validate:"required,uuid4"`
	UserID        string   `json:"user_id" validate:"required,uuid4"`
	SeatNumbers   []string `json:"seat_numbers" validate:"required,min=1,dive,required"`
	TotalPrice    int64    `json:"total_price" validate:"required,gt=0"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=mobile_money card cash"`
}
