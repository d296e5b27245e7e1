package service

//go:generate go run go.uber.org/mock/mockgen -source=./lifecycle.go -destination=../mocks/lifecycle_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"
	"rentgear/config"
	"rentgear/infras/otel"
	availabilityModel "rentgear/internal/domains/availability/model"
	availabilityRepo "rentgear/internal/domains/availability/repository"
	"rentgear/internal/domains/booking/model"
	"rentgear/internal/domains/booking/repository"
	notificationDto "rentgear/internal/domains/notification/model/dto"
	notificationService "rentgear/internal/domains/notification/service"
	paymentModel "rentgear/internal/domains/payment/model"
	paymentRepo "rentgear/internal/domains/payment/repository"
	profileModel "rentgear/internal/domains/profile/model"
	profileRepo "rentgear/internal/domains/profile/repository"
	"rentgear/shared"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	gModel "rentgear/shared/model"
	"rentgear/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	lifecycleActor = "payment-webhook"
)

// Lifecycle applies verified processor events to the booking ledger.
// It is the only component allowed to transition booking.status,
// payment_status and the availability calendar. Every handler tolerates
// duplicate and out-of-order delivery: status writes are conditional on
// the prior state and row creation is guarded by existence checks on the
// processor's transaction id.
type Lifecycle interface {
	HandleEvent(ctx context.Context, event model.PaymentEvent) error
}

type eventHandler func(ctx context.Context, event model.PaymentEvent) error

type lifecycleImpl struct {
	bookings repository.Booking
	payments paymentRepo.Payment
	blocks   availabilityRepo.Availability
	profiles profileRepo.Profile
	notifier notificationService.Notification
	cfg      *config.Config
	otel     otel.Otel
	handlers map[string]eventHandler
}

func NewLifecycle(
	bookings repository.Booking,
	payments paymentRepo.Payment,
	blocks availabilityRepo.Availability,
	profiles profileRepo.Profile,
	notifier notificationService.Notification,
	cfg *config.Config,
	otl otel.Otel,
) Lifecycle {
	svc := &lifecycleImpl{
		bookings: bookings,
		payments: payments,
		blocks:   blocks,
		profiles: profiles,
		notifier: notifier,
		cfg:      cfg,
		otel:     otl,
	}

	// Explicit dispatch table instead of a switch so the recognized set
	// is enumerable and each transition is testable in isolation.
	svc.handlers = map[string]eventHandler{
		constant.EventCheckoutCompleted: svc.handleCheckoutCompleted,
		constant.EventPaymentSucceeded:  svc.handlePaymentSucceeded,
		constant.EventPaymentFailed:     svc.handlePaymentFailed,
		constant.EventChargeRefunded:    svc.handleChargeRefunded,
	}

	return svc
}

func (s *lifecycleImpl) HandleEvent(ctx context.Context, event model.PaymentEvent) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".HandleEvent")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("event.type", event.Type)

	handler, ok := s.handlers[event.Type]
	if !ok {
		// Forward compatibility: acknowledge and ignore.
		log.Info().Str("type", event.Type).Msg("ignoring unrecognized payment event")

		return nil
	}

	return handler(ctx, event)
}

// handleCheckoutCompleted confirms the booking, records the payment
// attempt and blocks the equipment calendar for the rental window.
func (s *lifecycleImpl) handleCheckoutCompleted(ctx context.Context, event model.PaymentEvent) error {
	booking, found, err := s.findBooking(ctx, event.BookingID)
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	// Cancelled is terminal. A redelivered checkout event can arrive after
	// a refund already cancelled the booking and freed its calendar block;
	// confirming here would resurrect both.
	if booking.Status == constant.BookingStatusCancelled {
		log.Info().Str("booking_id", booking.ID).Msg("ignoring checkout event for cancelled booking")

		return nil
	}

	now := timezone.Now()

	// No-op on replay: only rows not yet marked paid are touched.
	notYetPaid := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: booking.ID, Table: model.TableName},
			gDto.Filter{Field: model.FieldPaymentStatus, Operator: gDto.FilterOperatorNotEq, Value: constant.PaymentStatusPaid, Table: model.TableName},
		},
	}

	err = s.bookings.Update(ctx, map[string]any{
		model.FieldStatus:          constant.BookingStatusConfirmed,
		model.FieldPaymentStatus:   constant.PaymentStatusPaid,
		model.FieldPaymentIntentID: event.PaymentIntentID,
		model.FieldPaidAt:          now,
		constant.FieldModifiedAt:   now,
		constant.FieldModifiedBy:   lifecycleActor,
	}, notYetPaid)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to confirm booking")

		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err = s.recordPayment(ctx, booking, event); err != nil {
		return err
	}

	if err = s.blockCalendar(ctx, booking); err != nil {
		return err
	}

	s.notifyConfirmed(ctx, booking)

	return nil
}

// handlePaymentSucceeded finalizes the payment attempt. A payment that
// is already completed is left alone.
func (s *lifecycleImpl) handlePaymentSucceeded(ctx context.Context, event model.PaymentEvent) error {
	payment, found, err := s.findPayment(ctx, event.PaymentIntentID)
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	if payment.Status == constant.PaymentStatusCompleted {
		return nil
	}

	notCompleted := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: paymentModel.FieldID, Operator: gDto.FilterOperatorEq, Value: payment.ID, Table: paymentModel.TableName},
			gDto.Filter{Field: paymentModel.FieldStatus, Operator: gDto.FilterOperatorNotEq, Value: constant.PaymentStatusCompleted, Table: paymentModel.TableName},
		},
	}

	err = s.payments.Update(ctx, map[string]any{
		paymentModel.FieldStatus: constant.PaymentStatusCompleted,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: lifecycleActor,
	}, notCompleted)
	if err != nil {
		log.Error().Err(err).Str("payment_id", payment.ID).Msg("failed to complete payment")

		return fmt.Errorf("failed to complete payment: %w", err)
	}

	return nil
}

// handlePaymentFailed flags the booking's payment as failed. The booking
// status itself is left untouched.
func (s *lifecycleImpl) handlePaymentFailed(ctx context.Context, event model.PaymentEvent) error {
	booking, found, err := s.findBooking(ctx, event.BookingID)
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	notFailed := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: booking.ID, Table: model.TableName},
			gDto.Filter{Field: model.FieldPaymentStatus, Operator: gDto.FilterOperatorNotEq, Value: constant.PaymentStatusFailed, Table: model.TableName},
		},
	}

	err = s.bookings.Update(ctx, map[string]any{
		model.FieldPaymentStatus: constant.PaymentStatusFailed,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: lifecycleActor,
	}, notFailed)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to mark payment failure")

		return fmt.Errorf("failed to mark payment failure: %w", err)
	}

	s.notifyPaymentFailed(ctx, booking, event.FailureMessage)

	return nil
}

// handleChargeRefunded applies full or partial refunds. A full refund
// cancels the booking and frees its calendar block; a partial refund
// touches only the payment row.
func (s *lifecycleImpl) handleChargeRefunded(ctx context.Context, event model.PaymentEvent) error {
	payment, found, err := s.findPayment(ctx, event.PaymentIntentID)
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	now := timezone.Now()

	if !event.FullRefund {
		err = s.payments.Update(ctx, map[string]any{
			paymentModel.FieldStatus:         constant.PaymentStatusPartiallyRefunded,
			paymentModel.FieldAmountRefunded: event.AmountRefunded,
			paymentModel.FieldChargeID:       event.ChargeID,
			constant.FieldModifiedAt:         now,
			constant.FieldModifiedBy:         lifecycleActor,
		}, shared.FilterByID(payment.ID, paymentModel.FieldID, paymentModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("payment_id", payment.ID).Msg("failed to record partial refund")

			return fmt.Errorf("failed to record partial refund: %w", err)
		}

		return nil
	}

	err = s.payments.Update(ctx, map[string]any{
		paymentModel.FieldStatus:         constant.PaymentStatusRefunded,
		paymentModel.FieldAmountRefunded: event.AmountRefunded,
		paymentModel.FieldChargeID:       event.ChargeID,
		paymentModel.FieldRefundedAt:     now,
		constant.FieldModifiedAt:         now,
		constant.FieldModifiedBy:         lifecycleActor,
	}, shared.FilterByID(payment.ID, paymentModel.FieldID, paymentModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("payment_id", payment.ID).Msg("failed to record refund")

		return fmt.Errorf("failed to record refund: %w", err)
	}

	notCancelled := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: payment.BookingID, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorNotEq, Value: constant.BookingStatusCancelled, Table: model.TableName},
		},
	}

	err = s.bookings.Update(ctx, map[string]any{
		model.FieldStatus:        constant.BookingStatusCancelled,
		model.FieldPaymentStatus: constant.PaymentStatusRefunded,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: lifecycleActor,
	}, notCancelled)
	if err != nil {
		log.Error().Err(err).Str("booking_id", payment.BookingID).Msg("failed to cancel refunded booking")

		return fmt.Errorf("failed to cancel refunded booking: %w", err)
	}

	blockFilter := shared.FilterByID(payment.BookingID, availabilityModel.FieldBookingID, availabilityModel.TableName)
	if err = s.blocks.Delete(ctx, blockFilter); err != nil {
		log.Error().Err(err).Str("booking_id", payment.BookingID).Msg("failed to release availability block")

		return fmt.Errorf("failed to release availability block: %w", err)
	}

	s.notifyRefunded(ctx, payment.BookingID, payment.Amount, payment.Currency)

	return nil
}

// findBooking resolves an event's booking reference. A missing id or a
// missing row is not an error at the webhook boundary: the event may
// belong to another environment or race booking creation, so it is
// logged and skipped (the processor will not re-deliver successfully
// acknowledged events).
func (s *lifecycleImpl) findBooking(ctx context.Context, bookingID string) (model.Booking, bool, error) {
	if bookingID == constant.Empty {
		log.Warn().Msg("payment event carries no booking reference, skipping")

		return model.Booking{}, false, nil
	}

	booking, err := s.bookings.Get(ctx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return model.Booking{}, false, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		log.Warn().Str("booking_id", bookingID).Msg("payment event references unknown booking, skipping")

		return model.Booking{}, false, nil
	}

	return booking, true, nil
}

func (s *lifecycleImpl) findPayment(ctx context.Context, paymentIntentID string) (paymentModel.Payment, bool, error) {
	if paymentIntentID == constant.Empty {
		log.Warn().Msg("payment event carries no payment intent reference, skipping")

		return paymentModel.Payment{}, false, nil
	}

	filter := shared.FilterByID(paymentIntentID, paymentModel.FieldPaymentIntentID, paymentModel.TableName)

	payment, err := s.payments.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to get payment")

		return paymentModel.Payment{}, false, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		log.Warn().Str("payment_intent_id", paymentIntentID).Msg("payment event references unknown payment, skipping")

		return paymentModel.Payment{}, false, nil
	}

	return payment, true, nil
}

// recordPayment creates the payment attempt row exactly once per
// processor payment-intent id.
func (s *lifecycleImpl) recordPayment(ctx context.Context, booking model.Booking, event model.PaymentEvent) error {
	filter := shared.FilterByID(event.PaymentIntentID, paymentModel.FieldPaymentIntentID, paymentModel.TableName)

	exists, err := s.payments.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to check payment existence")

		return fmt.Errorf("failed to check payment existence: %w", err)
	}

	if exists {
		return nil
	}

	amount := event.Amount
	if amount == 0 {
		amount = booking.TotalAmount
	}

	currency := event.Currency
	if currency == constant.Empty {
		currency = s.cfg.Payment.Currency
	}

	now := timezone.Now()

	err = s.payments.Insert(ctx, paymentModel.Payment{
		ID:              uuid.NewString(),
		BookingID:       booking.ID,
		Amount:          amount,
		Currency:        currency,
		Status:          constant.PaymentStatusPending,
		PaymentIntentID: event.PaymentIntentID,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  lifecycleActor,
			ModifiedBy: lifecycleActor,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to record payment")

		return fmt.Errorf("failed to record payment: %w", err)
	}

	return nil
}

// blockCalendar reserves the equipment calendar for the rental window.
// The guard keyed on booking id makes replays no-ops; overlap with other
// bookings is rejected by the store's exclusion constraint.
func (s *lifecycleImpl) blockCalendar(ctx context.Context, booking model.Booking) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: availabilityModel.FieldBookingID, Operator: gDto.FilterOperatorEq, Value: booking.ID, Table: availabilityModel.TableName},
			gDto.Filter{Field: availabilityModel.FieldReason, Operator: gDto.FilterOperatorEq, Value: constant.BlockReasonBooked, Table: availabilityModel.TableName},
		},
	}

	exists, err := s.blocks.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to check availability block existence")

		return fmt.Errorf("failed to check availability block existence: %w", err)
	}

	if exists {
		return nil
	}

	now := timezone.Now()

	err = s.blocks.Insert(ctx, availabilityModel.Block{
		ID:          uuid.NewString(),
		EquipmentID: booking.EquipmentID,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		Reason:      constant.BlockReasonBooked,
		BookingID:   sql.NullString{String: booking.ID, Valid: true},
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  lifecycleActor,
			ModifiedBy: lifecycleActor,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to block equipment calendar")

		return fmt.Errorf("failed to block equipment calendar: %w", err)
	}

	return nil
}

// Side effects below are best-effort: a failed notification or email
// never fails the event, the state mutation already happened.

func (s *lifecycleImpl) notifyConfirmed(ctx context.Context, booking model.Booking) {
	payload := map[string]any{"booking_id": booking.ID, "equipment_id": booking.EquipmentID}

	err := s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: booking.RenterID,
		Type:   constant.NotificationBookingConfirmed,
		Title:  "Booking confirmed",
		Body: fmt.Sprintf("Your rental from %s to %s is confirmed.",
			booking.StartDate.Format(constant.DateOnlyFormat), booking.EndDate.Format(constant.DateOnlyFormat)),
		Data: payload,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify renter of confirmation")
	}

	err = s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: booking.OwnerID,
		Type:   constant.NotificationBookingConfirmed,
		Title:  "Your equipment was booked",
		Body: fmt.Sprintf("A paid booking runs from %s to %s.",
			booking.StartDate.Format(constant.DateOnlyFormat), booking.EndDate.Format(constant.DateOnlyFormat)),
		Data: payload,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify owner of confirmation")
	}

	s.emailRenter(ctx, booking, "Booking confirmed",
		fmt.Sprintf("<p>Your booking <b>%s</b> is confirmed and paid.</p>", booking.ID))
}

func (s *lifecycleImpl) notifyPaymentFailed(ctx context.Context, booking model.Booking, reason string) {
	if reason == constant.Empty {
		reason = "the payment could not be processed"
	}

	err := s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: booking.RenterID,
		Type:   constant.NotificationPaymentFailed,
		Title:  "Payment failed",
		Body:   fmt.Sprintf("Payment for your booking failed: %s", reason),
		Data:   map[string]any{"booking_id": booking.ID},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify renter of payment failure")
	}
}

func (s *lifecycleImpl) notifyRefunded(ctx context.Context, bookingID string, amount int64, currency string) {
	booking, err := s.bookings.Get(ctx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
	if err != nil || booking.ID == constant.Empty {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to load booking for refund notification")

		return
	}

	if currency == constant.Empty {
		currency = s.cfg.Payment.Currency
	}

	err = s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: booking.RenterID,
		Type:   constant.NotificationBookingRefunded,
		Title:  "Booking refunded",
		Body:   fmt.Sprintf("Your booking was cancelled and %s was refunded.", shared.FormatAmount(amount, currency)),
		Data:   map[string]any{"booking_id": booking.ID},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify renter of refund")
	}

	s.emailRenter(ctx, booking, "Booking refunded",
		fmt.Sprintf("<p>Your booking <b>%s</b> was cancelled and refunded.</p>", booking.ID))
}

func (s *lifecycleImpl) emailRenter(ctx context.Context, booking model.Booking, subject, html string) {
	profile, err := s.profiles.Get(ctx, shared.FilterByID(booking.RenterID, profileModel.FieldID, profileModel.TableName))
	if err != nil || profile.Email == constant.Empty {
		log.Error().Err(err).Str("renter_id", booking.RenterID).Msg("failed to resolve renter email")

		return
	}

	err = s.notifier.Email(ctx, notificationDto.EmailRequest{
		To:      profile.Email,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to request email dispatch")
	}
}
