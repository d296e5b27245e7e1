package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"rentgear/infras/otel"
	bookingModel "rentgear/internal/domains/booking/model"
	bookingRepo "rentgear/internal/domains/booking/repository"
	notificationDto "rentgear/internal/domains/notification/model/dto"
	notificationService "rentgear/internal/domains/notification/service"
	profileModel "rentgear/internal/domains/profile/model"
	profileRepo "rentgear/internal/domains/profile/repository"
	"rentgear/shared"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/timezone"

	"github.com/rs/zerolog/log"
)

// SweepResult reports how many reminders one sweep produced, counted
// per recipient. A return reminder goes to both the renter and the
// owner, so it contributes two.
type SweepResult struct {
	PickupReminders int `json:"pickup_reminders"`
	ReturnReminders int `json:"return_reminders"`
}

// Reminder notifies renters and owners one day before a rental starts
// or ends. The sweep is stateless and keyed purely on dates: running it
// more than once on the same day can repeat a reminder, which is
// accepted over carrying a delivery cursor.
type Reminder interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type serviceImpl struct {
	bookings bookingRepo.Booking
	profiles profileRepo.Profile
	notifier notificationService.Notification
	otel     otel.Otel
}

func New(
	bookings bookingRepo.Booking,
	profiles profileRepo.Profile,
	notifier notificationService.Notification,
	otl otel.Otel,
) Reminder {
	return &serviceImpl{
		bookings: bookings,
		profiles: profiles,
		notifier: notifier,
		otel:     otl,
	}
}

func (s *serviceImpl) Sweep(ctx context.Context) (res SweepResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ReminderSweep")
	defer scope.End()
	defer scope.TraceIfError(err)

	tomorrow := timezoneTomorrow()

	pickups, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, dueFilter(bookingModel.FieldStartDate, tomorrow, constant.BookingStatusConfirmed))
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings starting tomorrow")

		return res, fmt.Errorf("failed to get bookings starting tomorrow: %w", err)
	}

	for _, booking := range pickups {
		s.remind(ctx, booking.RenterID, constant.NotificationPickupReminder, "Pickup reminder",
			fmt.Sprintf("Your rental starts tomorrow (%s).", booking.StartDate.Format(constant.DateOnlyFormat)), booking)

		res.PickupReminders++
	}

	returns, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, dueFilter(bookingModel.FieldEndDate, tomorrow, constant.BookingStatusActive))
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings ending tomorrow")

		return res, fmt.Errorf("failed to get bookings ending tomorrow: %w", err)
	}

	for _, booking := range returns {
		body := fmt.Sprintf("The rental ends tomorrow (%s).", booking.EndDate.Format(constant.DateOnlyFormat))

		for _, userID := range []string{booking.RenterID, booking.OwnerID} {
			s.remind(ctx, userID, constant.NotificationReturnReminder, "Return reminder", body, booking)

			res.ReturnReminders++
		}
	}

	log.Info().
		Int("pickup_reminders", res.PickupReminders).
		Int("return_reminders", res.ReturnReminders).
		Msg("reminder sweep finished")

	return res, nil
}

// remind is best-effort per recipient: one failed notification never
// stops the sweep.
func (s *serviceImpl) remind(ctx context.Context, userID, kind, title, body string, booking bookingModel.Booking) {
	err := s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
		Data:   map[string]any{"booking_id": booking.ID, "equipment_id": booking.EquipmentID},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Str("user_id", userID).Msg("failed to create reminder notification")
	}

	profile, err := s.profiles.Get(ctx, shared.FilterByID(userID, profileModel.FieldID, profileModel.TableName))
	if err != nil || profile.Email == constant.Empty {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to resolve reminder email recipient")

		return
	}

	err = s.notifier.Email(ctx, notificationDto.EmailRequest{
		To:      profile.Email,
		Subject: title,
		HTML:    fmt.Sprintf("<p>%s</p>", body),
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to request reminder email")
	}
}

func timezoneTomorrow() string {
	return timezone.Now().AddDate(0, 0, 1).Format(constant.DateOnlyFormat)
}

func dueFilter(dateField, date, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: dateField, Operator: gDto.FilterOperatorEq, Value: date, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: bookingModel.TableName},
		},
	}
}
