package request

type CreateBookingRequest struct {
	ServiceID         string `json:"service_id" validate:"required,uuid4"`
	PreferredDateFrom string `json:"preferred_date_from" validate:"required,datetime=2006-01-02"`
	PreferredDateTo   string `json:"preferred_date_to" validate:"required,datetime=2006-01-02"`
}

type CompleteBookingRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type ReviewBookingRequest struct {
	Review string `json:"review" validate:"required,max=2000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}
