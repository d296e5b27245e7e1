package model

// PaymentEvent is the processor event after signature verification and
// payload decoding, reduced to the fields the lifecycle handlers act on.
// Exactly one delivery is guaranteed nowhere: handlers must stay safe
// under duplicates and reordering.
type PaymentEvent struct {
	Type            string
	BookingID       string
	PaymentIntentID string
	ChargeID        string
	Amount          int64
	AmountRefunded  int64
	Currency        string
	FullRefund      bool
	FailureMessage  string
}
