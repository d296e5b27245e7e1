package dto

import (
	"rentgear/internal/domains/booking/model"
	"rentgear/shared"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
)

type BookingResponse struct {
	ID              string `json:"id"`
	EquipmentID     string `json:"equipment_id"`
	RenterID        string `json:"renter_id"`
	OwnerID         string `json:"owner_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TotalDays       int64  `json:"total_days"`
	DailyRate       int64  `json:"daily_rate"`
	Subtotal        int64  `json:"subtotal"`
	ServiceFee      int64  `json:"service_fee"`
	TotalAmount     int64  `json:"total_amount"`
	Status          string `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	PayoutStatus    string `json:"payout_status"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	PaidAt          string `json:"paid_at,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.EquipmentID = mod.EquipmentID
	r.RenterID = mod.RenterID
	r.OwnerID = mod.OwnerID
	r.StartDate = mod.StartDate.Format(constant.DateOnlyFormat)
	r.EndDate = mod.EndDate.Format(constant.DateOnlyFormat)
	r.TotalDays = mod.TotalDays
	r.DailyRate = mod.DailyRate
	r.Subtotal = mod.Subtotal
	r.ServiceFee = mod.ServiceFee
	r.TotalAmount = mod.TotalAmount
	r.Status = mod.Status
	r.PaymentStatus = mod.PaymentStatus
	r.PayoutStatus = mod.PayoutStatus

	if mod.PaymentIntentID.Valid {
		r.PaymentIntentID = mod.PaymentIntentID.String
	}

	if mod.PaidAt.Valid {
		r.PaidAt = mod.PaidAt.Time.Format(constant.DateFormat)
	}

	r.Metadata.FromModel(mod.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
