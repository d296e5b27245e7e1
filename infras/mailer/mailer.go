package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentgear/config"
	"rentgear/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	apiURL         = "https://api.resend.com/emails"
	requestTimeout = 10 * time.Second
)

// Mail is one outbound email.
type Mail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type mailerImpl struct {
	cfg    *config.Config
	client *http.Client
}

func New(cfg *config.Config) Mailer {
	return &mailerImpl{
		cfg: cfg,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func (m *mailerImpl) Send(ctx context.Context, mail Mail) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.cfg.Mailer.From,
		To:      []string{mail.To},
		Subject: mail.Subject,
		HTML:    mail.HTML,
		Text:    mail.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+m.cfg.Mailer.APIKey)
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("email provider rejected request")

		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	log.Info().Str("to", mail.To).Str("subject", mail.Subject).Msg("email dispatched")

	return nil
}
