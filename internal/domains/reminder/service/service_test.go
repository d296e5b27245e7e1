package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rentgear/infras/otel/mocks"
	bookingMocks "rentgear/internal/domains/booking/mocks"
	bookingModel "rentgear/internal/domains/booking/model"
	notificationMocks "rentgear/internal/domains/notification/mocks"
	profileMocks "rentgear/internal/domains/profile/mocks"
	profileModel "rentgear/internal/domains/profile/model"
	"rentgear/internal/domains/reminder/service"
)

func reminderBooking(id, renterID, ownerID string) bookingModel.Booking {
	return bookingModel.Booking{
		ID:          id,
		EquipmentID: "equipment-1",
		RenterID:    renterID,
		OwnerID:     ownerID,
		StartDate:   time.Now().AddDate(0, 0, 1),
		EndDate:     time.Now().AddDate(0, 0, 3),
	}
}

func TestReminderService_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookings := bookingMocks.NewMockBooking(ctrl)
	mockProfiles := profileMocks.NewMockProfile(ctrl)
	mockNotifier := notificationMocks.NewMockNotification(ctrl)

	svc := service.New(mockBookings, mockProfiles, mockNotifier, mocks.NewOtel())

	// One booking starting tomorrow, one ending tomorrow. The return
	// reminder goes to both sides, so three recipients in total.
	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{reminderBooking("booking-1", "renter-1", "owner-1")}, nil)
	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{reminderBooking("booking-2", "renter-2", "owner-2")}, nil)

	mockNotifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	mockProfiles.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(profileModel.Profile{ID: "user", Email: "user@example.com"}, nil).
		Times(3)
	mockNotifier.EXPECT().Email(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	res, err := svc.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, res.PickupReminders)
	assert.Equal(t, 2, res.ReturnReminders)
}

func TestReminderService_Sweep_EmptyDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookings := bookingMocks.NewMockBooking(ctrl)
	mockProfiles := profileMocks.NewMockProfile(ctrl)
	mockNotifier := notificationMocks.NewMockNotification(ctrl)

	svc := service.New(mockBookings, mockProfiles, mockNotifier, mocks.NewOtel())

	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{}, nil).
		Times(2)

	res, err := svc.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, res.PickupReminders)
	assert.Equal(t, 0, res.ReturnReminders)
}

func TestReminderService_Sweep_NotificationFailureDoesNotStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookings := bookingMocks.NewMockBooking(ctrl)
	mockProfiles := profileMocks.NewMockProfile(ctrl)
	mockNotifier := notificationMocks.NewMockNotification(ctrl)

	svc := service.New(mockBookings, mockProfiles, mockNotifier, mocks.NewOtel())

	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{
			reminderBooking("booking-1", "renter-1", "owner-1"),
			reminderBooking("booking-2", "renter-2", "owner-2"),
		}, nil)
	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{}, nil)

	mockNotifier.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(errors.New("broker unavailable")).
		Times(2)
	mockProfiles.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(profileModel.Profile{}, errors.New("database error")).
		Times(2)

	res, err := svc.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, res.PickupReminders)
	assert.Equal(t, 0, res.ReturnReminders)
}

func TestReminderService_Sweep_QueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBookings := bookingMocks.NewMockBooking(ctrl)
	mockProfiles := profileMocks.NewMockProfile(ctrl)
	mockNotifier := notificationMocks.NewMockNotification(ctrl)

	svc := service.New(mockBookings, mockProfiles, mockNotifier, mocks.NewOtel())

	mockBookings.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database error"))

	_, err := svc.Sweep(context.Background())

	assert.Error(t, err)
}
