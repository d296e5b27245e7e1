package webhook_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rentgear/infras/otel/mocks"
	"rentgear/infras/payment"
	gatewayMocks "rentgear/infras/payment/mocks"
	bookingMocks "rentgear/internal/domains/booking/mocks"
	"rentgear/internal/domains/booking/model"
	"rentgear/internal/handlers/webhook"
	"rentgear/shared/constant"
	"rentgear/shared/failure"
)

func checkoutEvent(t *testing.T) payment.Event {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"id":             "cs_123",
		"payment_intent": "pi_123",
		"amount_total":   4400,
		"currency":       "usd",
		"metadata":       map[string]string{"booking_id": "booking-1"},
	})
	assert.NoError(t, err)

	return payment.Event{
		ID:   "evt_123",
		Type: constant.EventCheckoutCompleted,
		Raw:  raw,
	}
}

func TestWebhookHandler_HandlePaymentWebhook(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle)
		wantStatus int
		wantBody   string
	}{
		{
			name: "verified event is applied and acknowledged",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(checkoutEvent(t), nil)
				lifecycle.EXPECT().
					HandleEvent(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, event model.PaymentEvent) error {
						assert.Equal(t, constant.EventCheckoutCompleted, event.Type)
						assert.Equal(t, "booking-1", event.BookingID)
						assert.Equal(t, "pi_123", event.PaymentIntentID)
						assert.Equal(t, int64(4400), event.Amount)
						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"received":true}`,
		},
		{
			name: "invalid signature is rejected",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(payment.Event{}, failure.Unauthorized("invalid webhook signature"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing booking is acknowledged so delivery stops",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(checkoutEvent(t), nil)
				lifecycle.EXPECT().
					HandleEvent(gomock.Any(), gomock.Any()).
					Return(failure.NotFound("booking not found"))
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"received":true}`,
		},
		{
			name: "transient handler failure surfaces for redelivery",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(checkoutEvent(t), nil)
				lifecycle.EXPECT().
					HandleEvent(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "unrecognized event type is acknowledged untouched",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(payment.Event{ID: "evt_456", Type: "customer.created", Raw: json.RawMessage(`{}`)}, nil)
				lifecycle.EXPECT().
					HandleEvent(gomock.Any(), model.PaymentEvent{Type: "customer.created"}).
					Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"received":true}`,
		},
		{
			name: "malformed payload is rejected",
			setupMock: func(gateway *gatewayMocks.MockGateway, lifecycle *bookingMocks.MockLifecycle) {
				gateway.EXPECT().
					ConstructEvent(gomock.Any(), "sig_valid").
					Return(payment.Event{
						ID:   "evt_789",
						Type: constant.EventCheckoutCompleted,
						Raw:  json.RawMessage(`{not json`),
					}, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGateway := gatewayMocks.NewMockGateway(ctrl)
			mockLifecycle := bookingMocks.NewMockLifecycle(ctrl)
			tt.setupMock(mockGateway, mockLifecycle)

			handler := webhook.New(mockGateway, mockLifecycle, mocks.NewOtel())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`))
			req.Header.Set(constant.RequestHeaderWebhookSignature, "sig_valid")
			rec := httptest.NewRecorder()

			handler.HandlePaymentWebhook(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
