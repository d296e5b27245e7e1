package model

import "rentgear/shared/model"

const (
	TableName  = "equipment"
	EntityName = "equipment"

	FieldID          = "id"
	FieldOwnerID     = "owner_id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldDailyRate   = "daily_rate"
	FieldPhotoURL    = "photo_url"
	FieldActive      = "active"
)

type Equipment struct {
	ID          string `db:"id"`
	OwnerID     string `db:"owner_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	DailyRate   int64  `db:"daily_rate"`
	PhotoURL    string `db:"photo_url"`
	Active      bool   `db:"active"`
	model.Metadata
}
