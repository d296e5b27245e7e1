package model

import (
	"rentgear/shared/model"
)

const (
	TableName  = "payouts"
	EntityName = "payout"

	FieldID         = "id"
	FieldBookingID  = "booking_id"
	FieldOwnerID    = "owner_id"
	FieldAmount     = "amount"
	FieldFee        = "platform_fee"
	FieldStatus     = "status"
	FieldTransferID = "transfer_id"
)

// Payout is the owner's share of one completed booking. The table holds
// a unique constraint on booking_id; rows are created only after the
// processor transfer has succeeded, so a row always carries a transfer id.
type Payout struct {
	ID          string `db:"id"`
	BookingID   string `db:"booking_id"`
	OwnerID     string `db:"owner_id"`
	Amount      int64  `db:"amount"`
	PlatformFee int64  `db:"platform_fee"`
	Status      string `db:"status"`
	TransferID  string `db:"transfer_id"`
	model.Metadata
}
