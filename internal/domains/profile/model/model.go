package model

import (
	"database/sql"

	"rentgear/shared/model"
)

const (
	TableName  = "profiles"
	EntityName = "profile"

	FieldID              = "id"
	FieldEmail           = "email"
	FieldFullName        = "full_name"
	FieldPayoutAccountID = "payout_account_id"
	FieldPayoutsEnabled  = "payouts_enabled"
)

// Profile mirrors the identity provider's user record plus the payout
// destination fields this service owns. The row id is the provider's
// user id.
type Profile struct {
	ID              string         `db:"id"`
	Email           string         `db:"email"`
	FullName        string         `db:"full_name"`
	PayoutAccountID sql.NullString `db:"payout_account_id"`
	PayoutsEnabled  bool           `db:"payouts_enabled"`
	model.Metadata
}
