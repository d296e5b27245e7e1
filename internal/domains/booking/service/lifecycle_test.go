package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rentgear/config"
	"rentgear/infras/otel/mocks"
	availabilityMocks "rentgear/internal/domains/availability/mocks"
	availabilityModel "rentgear/internal/domains/availability/model"
	bookingMocks "rentgear/internal/domains/booking/mocks"
	"rentgear/internal/domains/booking/model"
	"rentgear/internal/domains/booking/service"
	notificationMocks "rentgear/internal/domains/notification/mocks"
	notificationDto "rentgear/internal/domains/notification/model/dto"
	paymentMocks "rentgear/internal/domains/payment/mocks"
	paymentModel "rentgear/internal/domains/payment/model"
	profileMocks "rentgear/internal/domains/profile/mocks"
	profileModel "rentgear/internal/domains/profile/model"
	"rentgear/shared/constant"
)

type lifecycleMocks struct {
	bookings *bookingMocks.MockBooking
	payments *paymentMocks.MockPayment
	blocks   *availabilityMocks.MockAvailability
	profiles *profileMocks.MockProfile
	notifier *notificationMocks.MockNotification
}

func newLifecycle(ctrl *gomock.Controller) (service.Lifecycle, lifecycleMocks) {
	m := lifecycleMocks{
		bookings: bookingMocks.NewMockBooking(ctrl),
		payments: paymentMocks.NewMockPayment(ctrl),
		blocks:   availabilityMocks.NewMockAvailability(ctrl),
		profiles: profileMocks.NewMockProfile(ctrl),
		notifier: notificationMocks.NewMockNotification(ctrl),
	}

	cfg := &config.Config{}
	cfg.Payment.Currency = "usd"

	svc := service.NewLifecycle(m.bookings, m.payments, m.blocks, m.profiles, m.notifier, cfg, mocks.NewOtel())

	return svc, m
}

func testBooking() model.Booking {
	return model.Booking{
		ID:            "booking-1",
		EquipmentID:   "equipment-1",
		RenterID:      "renter-1",
		OwnerID:       "owner-1",
		StartDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TotalDays:     2,
		DailyRate:     2000,
		Subtotal:      4000,
		ServiceFee:    400,
		TotalAmount:   4400,
		Status:        constant.BookingStatusPending,
		PaymentStatus: constant.PaymentStatusPending,
		PayoutStatus:  constant.PayoutStatusNone,
	}
}

func TestLifecycle_CheckoutCompleted(t *testing.T) {
	event := model.PaymentEvent{
		Type:            constant.EventCheckoutCompleted,
		BookingID:       "booking-1",
		PaymentIntentID: "pi_123",
		Amount:          4400,
		Currency:        "usd",
	}

	tests := []struct {
		name      string
		event     model.PaymentEvent
		setupMock func(m lifecycleMocks)
		wantErr   bool
	}{
		{
			name:  "first delivery confirms booking, records payment and blocks calendar",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(testBooking(), nil)
				m.bookings.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
				m.payments.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				m.payments.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p paymentModel.Payment) error {
						assert.Equal(t, "booking-1", p.BookingID)
						assert.Equal(t, "pi_123", p.PaymentIntentID)
						assert.Equal(t, int64(4400), p.Amount)
						assert.Equal(t, constant.PaymentStatusPending, p.Status)
						return nil
					})
				m.blocks.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				m.blocks.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b availabilityModel.Block) error {
						assert.Equal(t, "equipment-1", b.EquipmentID)
						assert.Equal(t, constant.BlockReasonBooked, b.Reason)
						assert.Equal(t, "booking-1", b.BookingID.String)
						return nil
					})
				m.notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{ID: "renter-1", Email: "renter@example.com"}, nil)
				m.notifier.EXPECT().Email(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "replay skips payment and block inserts",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(testBooking(), nil)
				m.bookings.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
				m.payments.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
				m.blocks.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
				m.notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{ID: "renter-1", Email: "renter@example.com"}, nil)
				m.notifier.EXPECT().Email(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "late duplicate after a refund leaves the cancelled booking alone",
			event: event,
			setupMock: func(m lifecycleMocks) {
				cancelled := testBooking()
				cancelled.Status = constant.BookingStatusCancelled
				cancelled.PaymentStatus = constant.PaymentStatusRefunded

				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(cancelled, nil)
			},
			wantErr: false,
		},
		{
			name:  "unknown booking is acknowledged without side effects",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: false,
		},
		{
			name: "event without booking reference is acknowledged",
			event: model.PaymentEvent{
				Type:            constant.EventCheckoutCompleted,
				PaymentIntentID: "pi_123",
			},
			setupMock: func(m lifecycleMocks) {},
			wantErr:   false,
		},
		{
			name:  "booking lookup failure is surfaced for redelivery",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, errors.New("database error"))
			},
			wantErr: true,
		},
		{
			name:  "failed notification does not fail the event",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(testBooking(), nil)
				m.bookings.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
				m.payments.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
				m.blocks.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
				m.notifier.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(errors.New("broker unavailable")).
					Times(2)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, errors.New("database error"))
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newLifecycle(ctrl)
			tt.setupMock(m)

			err := svc.HandleEvent(context.Background(), tt.event)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLifecycle_PaymentSucceeded(t *testing.T) {
	event := model.PaymentEvent{
		Type:            constant.EventPaymentSucceeded,
		PaymentIntentID: "pi_123",
	}

	tests := []struct {
		name      string
		event     model.PaymentEvent
		setupMock func(m lifecycleMocks)
		wantErr   bool
	}{
		{
			name:  "pending payment is completed",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(paymentModel.Payment{ID: "payment-1", Status: constant.PaymentStatusPending}, nil)
				m.payments.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "completed payment is left alone on replay",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(paymentModel.Payment{ID: "payment-1", Status: constant.PaymentStatusCompleted}, nil)
			},
			wantErr: false,
		},
		{
			name:  "unknown payment intent is acknowledged",
			event: event,
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(paymentModel.Payment{}, nil)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newLifecycle(ctrl)
			tt.setupMock(m)

			err := svc.HandleEvent(context.Background(), tt.event)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLifecycle_PaymentFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newLifecycle(ctrl)

	m.bookings.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(testBooking(), nil)
	m.bookings.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req map[string]any, _ any) error {
			assert.Equal(t, constant.PaymentStatusFailed, req[model.FieldPaymentStatus])
			assert.NotContains(t, req, model.FieldStatus)
			return nil
		})
	m.notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	err := svc.HandleEvent(context.Background(), model.PaymentEvent{
		Type:            constant.EventPaymentFailed,
		BookingID:       "booking-1",
		PaymentIntentID: "pi_123",
		FailureMessage:  "card declined",
	})

	assert.NoError(t, err)
}

func TestLifecycle_ChargeRefunded(t *testing.T) {
	payment := paymentModel.Payment{
		ID:              "payment-1",
		BookingID:       "booking-1",
		Amount:          4400,
		Status:          constant.PaymentStatusCompleted,
		PaymentIntentID: "pi_123",
	}

	tests := []struct {
		name      string
		event     model.PaymentEvent
		setupMock func(m lifecycleMocks)
		wantErr   bool
	}{
		{
			name: "partial refund touches only the payment row",
			event: model.PaymentEvent{
				Type:            constant.EventChargeRefunded,
				PaymentIntentID: "pi_123",
				ChargeID:        "ch_123",
				AmountRefunded:  1000,
				FullRefund:      false,
			},
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payment, nil)
				m.payments.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req map[string]any, _ any) error {
						assert.Equal(t, constant.PaymentStatusPartiallyRefunded, req[paymentModel.FieldStatus])
						assert.Equal(t, int64(1000), req[paymentModel.FieldAmountRefunded])
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "full refund cancels the booking and frees the calendar",
			event: model.PaymentEvent{
				Type:            constant.EventChargeRefunded,
				PaymentIntentID: "pi_123",
				ChargeID:        "ch_123",
				AmountRefunded:  4400,
				FullRefund:      true,
			},
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payment, nil)
				m.payments.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req map[string]any, _ any) error {
						assert.Equal(t, constant.PaymentStatusRefunded, req[paymentModel.FieldStatus])
						return nil
					})
				m.bookings.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req map[string]any, _ any) error {
						assert.Equal(t, constant.BookingStatusCancelled, req[model.FieldStatus])
						assert.Equal(t, constant.PaymentStatusRefunded, req[model.FieldPaymentStatus])
						return nil
					})
				m.blocks.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(testBooking(), nil)
				m.notifier.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req notificationDto.CreateNotificationRequest) error {
						assert.Contains(t, req.Body, "44.00 USD")
						return nil
					})
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{ID: "renter-1", Email: "renter@example.com"}, nil)
				m.notifier.EXPECT().Email(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantErr: false,
		},
		{
			name: "refund before payment record is acknowledged",
			event: model.PaymentEvent{
				Type:            constant.EventChargeRefunded,
				PaymentIntentID: "pi_123",
				FullRefund:      true,
			},
			setupMock: func(m lifecycleMocks) {
				m.payments.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(paymentModel.Payment{}, nil)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newLifecycle(ctrl)
			tt.setupMock(m)

			err := svc.HandleEvent(context.Background(), tt.event)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLifecycle_UnknownEventType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newLifecycle(ctrl)

	err := svc.HandleEvent(context.Background(), model.PaymentEvent{Type: "customer.created"})

	assert.NoError(t, err)
}
