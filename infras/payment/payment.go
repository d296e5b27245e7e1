package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"rentgear/config"
	"rentgear/infras/otel"
	"rentgear/shared/constant"
	"rentgear/shared/failure"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/account"
	"github.com/stripe/stripe-go/v79/accountlink"
	"github.com/stripe/stripe-go/v79/balance"
	"github.com/stripe/stripe-go/v79/transfer"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	otelAttrEventType = "event_type"
	otelAttrAccountID = "account_id"
)

// Event is the verified processor event envelope. Raw carries the
// event's data object for the caller to decode into a typed payload.
type Event struct {
	ID   string
	Type string
	Raw  json.RawMessage
}

// CheckoutSessionPayload is the data object of checkout.session.completed.
type CheckoutSessionPayload struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntentPayload is the data object of payment_intent.* events.
type PaymentIntentPayload struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// ChargePayload is the data object of charge.refunded. Refunded is the
// processor's full-refund flag; partial refunds carry only AmountRefunded.
type ChargePayload struct {
	ID             string            `json:"id"`
	PaymentIntent  string            `json:"payment_intent"`
	Refunded       bool              `json:"refunded"`
	AmountRefunded int64             `json:"amount_refunded"`
	Currency       string            `json:"currency"`
	Metadata       map[string]string `json:"metadata"`
}

type TransferRequest struct {
	Amount      int64
	Currency    string
	Destination string
	BookingID   string
	OwnerID     string
}

type Transfer struct {
	ID     string
	Amount int64
}

type Balance struct {
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Currency  string `json:"currency"`
}

type Gateway interface {
	ConstructEvent(payload []byte, signatureHeader string) (Event, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (Transfer, error)
	CreateAccount(ctx context.Context, email string) (accountID string, err error)
	CreateAccountLink(ctx context.Context, accountID string) (onboardingURL string, err error)
	AccountOnboarded(ctx context.Context, accountID string) (bool, error)
	GetBalance(ctx context.Context, accountID string) (Balance, error)
}

type gatewayImpl struct {
	cfg  *config.Config
	otel otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Gateway {
	stripe.Key = cfg.Payment.SecretKey

	log.Info().Msg("Payment gateway initialized")

	return &gatewayImpl{
		cfg:  cfg,
		otel: otl,
	}
}

// ConstructEvent verifies the webhook signature against the shared secret
// and returns the typed envelope. Fails closed on any signature mismatch.
func (g *gatewayImpl) ConstructEvent(payload []byte, signatureHeader string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.cfg.Payment.WebhookSecret)
	if err != nil {
		log.Error().Err(err).Msg("webhook signature verification failed")

		return Event{}, failure.Unauthorized("invalid webhook signature") //nolint:wrapcheck
	}

	return Event{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  event.Data.Raw,
	}, nil
}

func (g *gatewayImpl) CreateTransfer(ctx context.Context, req TransferRequest) (res Transfer, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".CreateTransfer")
	defer scope.End()
	defer scope.TraceIfError(err)

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		Destination:   stripe.String(req.Destination),
		TransferGroup: stripe.String(req.BookingID),
	}
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("owner_id", req.OwnerID)

	tr, err := transfer.New(params)
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to create transfer")

		return res, fmt.Errorf("failed to create transfer: %w", err)
	}

	return Transfer{ID: tr.ID, Amount: tr.Amount}, nil
}

func (g *gatewayImpl) CreateAccount(ctx context.Context, email string) (accountID string, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".CreateAccount")
	defer scope.End()
	defer scope.TraceIfError(err)

	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}

	acct, err := account.New(params)
	if err != nil {
		log.Error().Err(err).Msg("failed to create connected account")

		return constant.Empty, fmt.Errorf("failed to create connected account: %w", err)
	}

	return acct.ID, nil
}

func (g *gatewayImpl) CreateAccountLink(ctx context.Context, accountID string) (onboardingURL string, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".CreateAccountLink")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelAttrAccountID, accountID)

	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(g.cfg.Payment.Onboarding.RefreshURL),
		ReturnURL:  stripe.String(g.cfg.Payment.Onboarding.ReturnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to create account link")

		return constant.Empty, fmt.Errorf("failed to create account link: %w", err)
	}

	return link.URL, nil
}

func (g *gatewayImpl) AccountOnboarded(ctx context.Context, accountID string) (onboarded bool, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".AccountOnboarded")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelAttrAccountID, accountID)

	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to retrieve connected account")

		return false, fmt.Errorf("failed to retrieve connected account: %w", err)
	}

	return acct.PayoutsEnabled, nil
}

func (g *gatewayImpl) GetBalance(ctx context.Context, accountID string) (res Balance, err error) {
	_, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".GetBalance")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelAttrAccountID, accountID)

	params := &stripe.BalanceParams{}
	params.SetStripeAccount(accountID)

	bal, err := balance.Get(params)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to get balance")

		return res, fmt.Errorf("failed to get balance: %w", err)
	}

	for _, amount := range bal.Available {
		res.Available += amount.Amount
		res.Currency = string(amount.Currency)
	}

	for _, amount := range bal.Pending {
		res.Pending += amount.Amount
	}

	return res, nil
}
