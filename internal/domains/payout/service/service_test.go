package service_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rentgear/config"
	"rentgear/infras/otel/mocks"
	"rentgear/infras/payment"
	paymentMocks "rentgear/infras/payment/mocks"
	bookingMocks "rentgear/internal/domains/booking/mocks"
	bookingModel "rentgear/internal/domains/booking/model"
	notificationMocks "rentgear/internal/domains/notification/mocks"
	notificationDto "rentgear/internal/domains/notification/model/dto"
	payoutMocks "rentgear/internal/domains/payout/mocks"
	"rentgear/internal/domains/payout/model"
	"rentgear/internal/domains/payout/service"
	profileMocks "rentgear/internal/domains/profile/mocks"
	profileModel "rentgear/internal/domains/profile/model"
	cacheMocks "rentgear/shared/cache/mocks"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/failure"
)

type payoutMocksBundle struct {
	repo     *payoutMocks.MockPayout
	bookings *bookingMocks.MockBooking
	profiles *profileMocks.MockProfile
	gateway  *paymentMocks.MockGateway
	notifier *notificationMocks.MockNotification
	cache    *cacheMocks.MockRedisCache
}

func newPayoutService(ctrl *gomock.Controller) (service.Payout, payoutMocksBundle) {
	m := payoutMocksBundle{
		repo:     payoutMocks.NewMockPayout(ctrl),
		bookings: bookingMocks.NewMockBooking(ctrl),
		profiles: profileMocks.NewMockProfile(ctrl),
		gateway:  paymentMocks.NewMockGateway(ctrl),
		notifier: notificationMocks.NewMockNotification(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Payment.Currency = "usd"

	// Cache writes and invalidations run on detached goroutines.
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(m.repo, m.bookings, m.profiles, m.gateway, m.notifier, cfg, m.cache, mocks.NewOtel())

	return svc, m
}

func payableBooking() bookingModel.Booking {
	return bookingModel.Booking{
		ID:            "booking-1",
		EquipmentID:   "equipment-1",
		RenterID:      "renter-1",
		OwnerID:       "owner-1",
		Subtotal:      4000,
		ServiceFee:    400,
		TotalAmount:   4400,
		Status:        constant.BookingStatusCompleted,
		PaymentStatus: constant.PaymentStatusPaid,
		PayoutStatus:  constant.PayoutStatusNone,
	}
}

func onboardedProfile() profileModel.Profile {
	return profileModel.Profile{
		ID:              "owner-1",
		Email:           "owner@example.com",
		PayoutAccountID: sql.NullString{String: "acct_123", Valid: true},
		PayoutsEnabled:  true,
	}
}

func TestPayoutService_Request(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m payoutMocksBundle)
		wantErr   string
		wantCode  int
	}{
		{
			name: "transfer happens before the payout row is written",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payableBooking(), nil)
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(onboardedProfile(), nil)

				transferred := false
				m.gateway.EXPECT().
					CreateTransfer(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req payment.TransferRequest) (payment.Transfer, error) {
						transferred = true
						assert.Equal(t, int64(4000), req.Amount)
						assert.Equal(t, "acct_123", req.Destination)
						return payment.Transfer{ID: "tr_123", Amount: req.Amount}, nil
					})
				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p model.Payout) error {
						assert.True(t, transferred, "payout row written before transfer")
						assert.Equal(t, "tr_123", p.TransferID)
						assert.Equal(t, int64(4000), p.Amount)
						assert.Equal(t, int64(400), p.PlatformFee)
						assert.Equal(t, constant.PayoutStatusPending, p.Status)
						return nil
					})
				m.bookings.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
				m.notifier.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req notificationDto.CreateNotificationRequest) error {
						assert.Contains(t, req.Body, "40.00 USD")
						return nil
					})
			},
		},
		{
			name: "booking owned by someone else is not eligible",
			setupMock: func(m payoutMocksBundle) {
				booking := payableBooking()
				booking.OwnerID = "owner-2"
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr:  "booking is not eligible for payout",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "booking not yet completed is not eligible",
			setupMock: func(m payoutMocksBundle) {
				booking := payableBooking()
				booking.Status = constant.BookingStatusActive
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr:  "booking is not eligible for payout",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unpaid booking is not eligible",
			setupMock: func(m payoutMocksBundle) {
				booking := payableBooking()
				booking.PaymentStatus = constant.PaymentStatusPending
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr:  "booking is not eligible for payout",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "second request conflicts on the existing payout",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payableBooking(), nil)
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr:  "booking has already been paid out",
			wantCode: http.StatusConflict,
		},
		{
			name: "missing payout account blocks the request",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payableBooking(), nil)
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{ID: "owner-1", Email: "owner@example.com"}, nil)
			},
			wantErr:  "payout account setup is incomplete",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unfinished onboarding blocks the request",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payableBooking(), nil)
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				profile := onboardedProfile()
				profile.PayoutsEnabled = false
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profile, nil)
				m.gateway.EXPECT().
					AccountOnboarded(gomock.Any(), "acct_123").
					Return(false, nil)
			},
			wantErr:  "payout account setup is incomplete",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "failed transfer leaves no payout row",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(payableBooking(), nil)
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(onboardedProfile(), nil)
				m.gateway.EXPECT().
					CreateTransfer(gomock.Any(), gomock.Any()).
					Return(payment.Transfer{}, errors.New("transfer declined"))
			},
			wantErr: "failed to transfer payout",
		},
		{
			name: "unknown booking",
			setupMock: func(m payoutMocksBundle) {
				m.bookings.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookingModel.Booking{}, nil)
			},
			wantErr:  "booking not found",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newPayoutService(ctrl)
			tt.setupMock(m)

			res, err := svc.Request(context.Background(), "booking-1", "owner-1")

			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "booking-1", res.BookingID)
			assert.Equal(t, constant.PayoutStatusPending, res.Status)
		})
	}
}

func TestPayoutService_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m payoutMocksBundle)
		wantErr   bool
		wantAcct  string
	}{
		{
			name: "first connect provisions a new account",
			setupMock: func(m payoutMocksBundle) {
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{ID: "owner-1", Email: "owner@example.com"}, nil)
				m.gateway.EXPECT().
					CreateAccount(gomock.Any(), "owner@example.com").
					Return("acct_new", nil)
				m.profiles.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
				m.gateway.EXPECT().
					CreateAccountLink(gomock.Any(), "acct_new").
					Return("https://connect.example.com/onboard", nil)
			},
			wantAcct: "acct_new",
		},
		{
			name: "repeat connect reuses the stored account",
			setupMock: func(m payoutMocksBundle) {
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(onboardedProfile(), nil)
				m.gateway.EXPECT().
					CreateAccountLink(gomock.Any(), "acct_123").
					Return("https://connect.example.com/onboard", nil)
			},
			wantAcct: "acct_123",
		},
		{
			name: "unknown profile",
			setupMock: func(m payoutMocksBundle) {
				m.profiles.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newPayoutService(ctrl)
			tt.setupMock(m)

			res, err := svc.Connect(context.Background(), "owner-1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantAcct, res.AccountID)
			assert.NotEmpty(t, res.OnboardingURL)
		})
	}
}

func TestPayoutService_Balance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPayoutService(ctrl)

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))
	m.profiles.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(onboardedProfile(), nil)
	m.gateway.EXPECT().
		GetBalance(gomock.Any(), "acct_123").
		Return(payment.Balance{Available: 12000, Pending: 4000, Currency: "usd"}, nil)

	res, err := svc.Balance(context.Background(), "owner-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(12000), res.Available)
	assert.Equal(t, int64(4000), res.Pending)
}

func TestPayoutService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPayoutService(ctrl)

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))
	m.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)
	m.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Payout{{ID: "payout-1", BookingID: "booking-1", OwnerID: "owner-1", Amount: 4000}}, nil)

	res, err := svc.History(context.Background(), "owner-1", gDto.QueryParams{Page: 1, Limit: 10})

	assert.NoError(t, err)
	assert.Len(t, res.Payouts, 1)
	assert.Equal(t, 1, res.TotalData)
}
