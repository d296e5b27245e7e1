package dto

import (
	"encoding/json"

	"github.com/google/uuid"

	"rentgear/internal/domains/notification/model"
	gModel "rentgear/shared/model"
	"rentgear/shared/timezone"
)

type CreateNotificationRequest struct {
	UserID string         `json:"user_id" validate:"required"`
	Type   string         `json:"type"    validate:"required"`
	Title  string         `json:"title"   validate:"required"`
	Body   string         `json:"body"    validate:"required"`
	Data   map[string]any `json:"data"    validate:"omitempty"`
}

func (c *CreateNotificationRequest) ToModel(actor string) model.Notification {
	data, _ := json.Marshal(c.Data)

	return model.Notification{
		ID:     uuid.NewString(),
		UserID: c.UserID,
		Type:   c.Type,
		Title:  c.Title,
		Body:   c.Body,
		Data:   data,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  actor,
			ModifiedBy: actor,
		},
	}
}

// EmailRequest is the payload published to the email dispatch topic and
// consumed by the notifier worker.
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
}
