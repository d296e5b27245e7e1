package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"rentgear/infras/otel"
	"rentgear/infras/payment"
	"rentgear/internal/domains/booking/model"
	"rentgear/internal/domains/booking/service"
	"rentgear/shared/constant"
	"rentgear/shared/failure"
	"rentgear/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const metadataBookingID = "booking_id"

type ack struct {
	Received bool `json:"received"`
}

type Handler struct {
	gateway   payment.Gateway
	lifecycle service.Lifecycle
	otel      otel.Otel
}

func New(gateway payment.Gateway, lifecycle service.Lifecycle, otel otel.Otel) Handler {
	return Handler{
		gateway:   gateway,
		lifecycle: lifecycle,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/webhooks", func(routerGroup chi.Router) {
		routerGroup.Post("/payment", handler.HandlePaymentWebhook)
	})
}

// HandlePaymentWebhook receives signed payment-processor events.
// @Summary Receive payment processor events
// @Description Verifies the event signature and applies it to the booking lifecycle. Unrecognized event types are acknowledged without side effects.
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} ack "Event acknowledged"
// @Failure 401 {object} response.Error "Invalid signature"
// @Failure 500 {object} response.Error
// @Router /v1/webhooks/payment [post]
func (handler *Handler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".HandlePaymentWebhook")
	defer scope.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook body")

		response.WithError(w, failure.BadRequestFromString("failed to read request body"))

		return
	}

	event, err := handler.gateway.ConstructEvent(payload, r.Header.Get(constant.RequestHeaderWebhookSignature))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("event.id", event.ID)
	scope.SetAttribute("event.type", event.Type)

	paymentEvent, err := translate(event)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("event_id", event.ID).Msg("failed to decode webhook payload")

		response.WithError(w, failure.BadRequestFromString("malformed event payload"))

		return
	}

	if err := handler.lifecycle.HandleEvent(ctx, paymentEvent); err != nil {
		// A missing booking or payment is acknowledged so the processor
		// stops redelivering; everything else surfaces as 500 to retry.
		if failure.GetCode(err) != http.StatusNotFound {
			scope.TraceError(err)
			log.Error().Err(err).Str("event_id", event.ID).Msg("failed to handle payment event")

			response.WithError(w, err)

			return
		}

		log.Warn().Err(err).Str("event_id", event.ID).Msg("payment event references missing data, acknowledged")
	}

	response.WithRaw(w, http.StatusOK, ack{Received: true})
}

// translate decodes the verified event's data object into the lifecycle
// envelope. Event types outside the decode table pass through with just
// the type set; the lifecycle acknowledges those untouched.
func translate(event payment.Event) (model.PaymentEvent, error) {
	res := model.PaymentEvent{Type: event.Type}

	switch event.Type {
	case constant.EventCheckoutCompleted:
		var payload payment.CheckoutSessionPayload
		if err := json.Unmarshal(event.Raw, &payload); err != nil {
			return res, err //nolint:wrapcheck
		}

		res.BookingID = payload.Metadata[metadataBookingID]
		res.PaymentIntentID = payload.PaymentIntent
		res.Amount = payload.AmountTotal
		res.Currency = payload.Currency
	case constant.EventPaymentSucceeded, constant.EventPaymentFailed:
		var payload payment.PaymentIntentPayload
		if err := json.Unmarshal(event.Raw, &payload); err != nil {
			return res, err //nolint:wrapcheck
		}

		res.BookingID = payload.Metadata[metadataBookingID]
		res.PaymentIntentID = payload.ID
		res.Amount = payload.Amount
		res.Currency = payload.Currency

		if payload.LastPaymentError != nil {
			res.FailureMessage = payload.LastPaymentError.Message
		}
	case constant.EventChargeRefunded:
		var payload payment.ChargePayload
		if err := json.Unmarshal(event.Raw, &payload); err != nil {
			return res, err //nolint:wrapcheck
		}

		res.BookingID = payload.Metadata[metadataBookingID]
		res.PaymentIntentID = payload.PaymentIntent
		res.ChargeID = payload.ID
		res.AmountRefunded = payload.AmountRefunded
		res.FullRefund = payload.Refunded
		res.Currency = payload.Currency
	}

	return res, nil
}
