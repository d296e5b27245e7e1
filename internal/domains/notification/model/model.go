package model

import (
	"encoding/json"

	"rentgear/shared/model"
)

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID     = "id"
	FieldUserID = "user_id"
	FieldType   = "type"
	FieldTitle  = "title"
	FieldBody   = "body"
	FieldData   = "data"
)

// Notification is an in-app message. Rows are additive and never mutated.
type Notification struct {
	ID     string          `db:"id"`
	UserID string          `db:"user_id"`
	Type   string          `db:"type"`
	Title  string          `db:"title"`
	Body   string          `db:"body"`
	Data   json.RawMessage `db:"data"`
	model.Metadata
}
