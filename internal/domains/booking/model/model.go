package model

import (
	"database/sql"
	"errors"
	"time"

	"rentgear/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldEquipmentID     = "equipment_id"
	FieldRenterID        = "renter_id"
	FieldOwnerID         = "owner_id"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldTotalDays       = "total_days"
	FieldDailyRate       = "daily_rate"
	FieldSubtotal        = "subtotal"
	FieldServiceFee      = "service_fee"
	FieldTotalAmount     = "total_amount"
	FieldStatus          = "status"
	FieldPaymentStatus   = "payment_status"
	FieldPayoutStatus    = "payout_status"
	FieldPaymentIntentID = "payment_intent_id"
	FieldPaidAt          = "paid_at"
)

var (
	ErrInvalidAmounts   = errors.New("booking amounts are inconsistent")
	ErrInvalidDateRange = errors.New("booking end date must be after start date")
)

// Booking is one rental of one equipment item by a renter from an owner.
// Status and PaymentStatus vary semi-independently; the lifecycle service
// is the only component allowed to transition either. Amounts are integer
// minor units.
type Booking struct {
	ID              string         `db:"id"`
	EquipmentID     string         `db:"equipment_id"`
	RenterID        string         `db:"renter_id"`
	OwnerID         string         `db:"owner_id"`
	StartDate       time.Time      `db:"start_date"`
	EndDate         time.Time      `db:"end_date"`
	TotalDays       int64          `db:"total_days"`
	DailyRate       int64          `db:"daily_rate"`
	Subtotal        int64          `db:"subtotal"`
	ServiceFee      int64          `db:"service_fee"`
	TotalAmount     int64          `db:"total_amount"`
	Status          string         `db:"status"`
	PaymentStatus   string         `db:"payment_status"`
	PayoutStatus    string         `db:"payout_status"`
	PaymentIntentID sql.NullString `db:"payment_intent_id"`
	PaidAt          sql.NullTime   `db:"paid_at"`
	model.Metadata
}

// ValidateAmounts checks the money and date invariants:
// subtotal = daily_rate * total_days, total = subtotal + service_fee,
// end_date > start_date.
func (b *Booking) ValidateAmounts() error {
	if b.Subtotal != b.DailyRate*b.TotalDays {
		return ErrInvalidAmounts
	}

	if b.TotalAmount != b.Subtotal+b.ServiceFee {
		return ErrInvalidAmounts
	}

	if !b.EndDate.After(b.StartDate) {
		return ErrInvalidDateRange
	}

	return nil
}
