package model

import (
	"database/sql"
	"time"

	"rentgear/shared/model"
)

const (
	TableName  = "availability_blocks"
	EntityName = "availability_block"

	FieldID          = "id"
	FieldEquipmentID = "equipment_id"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldReason      = "reason"
	FieldBookingID   = "booking_id"
)

// Block marks a date range on one equipment item as unbookable.
// Overlap between blocks of the same equipment is rejected by the
// store's exclusion constraint, not by application logic.
type Block struct {
	ID          string         `db:"id"`
	EquipmentID string         `db:"equipment_id"`
	StartDate   time.Time      `db:"start_date"`
	EndDate     time.Time      `db:"end_date"`
	Reason      string         `db:"reason"`
	BookingID   sql.NullString `db:"booking_id"`
	model.Metadata
}
