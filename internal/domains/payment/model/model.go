package model

import (
	"database/sql"

	"rentgear/shared/model"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID              = "id"
	FieldBookingID       = "booking_id"
	FieldAmount          = "amount"
	FieldCurrency        = "currency"
	FieldStatus          = "status"
	FieldPaymentIntentID = "payment_intent_id"
	FieldChargeID        = "charge_id"
	FieldAmountRefunded  = "amount_refunded"
	FieldRefundedAt      = "refunded_at"
)

// Payment is one payment attempt against a booking, keyed by the
// processor's payment-intent id. Rows are mutated on processor events
// but never deleted.
type Payment struct {
	ID              string         `db:"id"`
	BookingID       string         `db:"booking_id"`
	Amount          int64          `db:"amount"`
	Currency        string         `db:"currency"`
	Status          string         `db:"status"`
	PaymentIntentID string         `db:"payment_intent_id"`
	ChargeID        sql.NullString `db:"charge_id"`
	AmountRefunded  int64          `db:"amount_refunded"`
	RefundedAt      sql.NullTime   `db:"refunded_at"`
	model.Metadata
}
