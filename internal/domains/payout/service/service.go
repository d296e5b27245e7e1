package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"rentgear/config"
	"rentgear/infras/otel"
	"rentgear/infras/payment"
	bookingModel "rentgear/internal/domains/booking/model"
	bookingRepo "rentgear/internal/domains/booking/repository"
	notificationDto "rentgear/internal/domains/notification/model/dto"
	notificationService "rentgear/internal/domains/notification/service"
	"rentgear/internal/domains/payout/model"
	"rentgear/internal/domains/payout/model/dto"
	"rentgear/internal/domains/payout/repository"
	profileModel "rentgear/internal/domains/profile/model"
	profileRepo "rentgear/internal/domains/profile/repository"
	"rentgear/shared"
	"rentgear/shared/cache"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/failure"
	gModel "rentgear/shared/model"
	"rentgear/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllPayout  = "payout:gets"
	cacheCountPayout   = "payout:count"
	cachePayoutBalance = "payout:balance"

	msgNotEligible     = "booking is not eligible for payout"
	msgAlreadyPaidOut  = "booking has already been paid out"
	msgAccountNotReady = "payout account setup is incomplete"
)

// Payout releases the owner's share of completed bookings and manages
// the owner's connected payout account.
type Payout interface {
	Request(ctx context.Context, bookingID, ownerID string) (dto.PayoutResponse, error)
	Connect(ctx context.Context, ownerID string) (dto.ConnectResponse, error)
	Balance(ctx context.Context, ownerID string) (dto.BalanceResponse, error)
	History(ctx context.Context, ownerID string, params gDto.QueryParams) (dto.GetPayoutsResponse, error)
}

type serviceImpl struct {
	repo     repository.Payout
	bookings bookingRepo.Booking
	profiles profileRepo.Profile
	gateway  payment.Gateway
	notifier notificationService.Notification
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Payout,
	bookings bookingRepo.Booking,
	profiles profileRepo.Profile,
	gateway payment.Gateway,
	notifier notificationService.Notification,
	cfg *config.Config,
	redis cache.RedisCache,
	otl otel.Otel,
) Payout {
	return &serviceImpl{
		repo:     repo,
		bookings: bookings,
		profiles: profiles,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		cache:    redis,
		otel:     otl,
	}
}

// Request runs the payout preconditions in order and, when all pass,
// transfers the booking subtotal to the owner's connected account. The
// payout row is inserted only after the transfer succeeds, so a failed
// transfer leaves no trace and the owner can retry.
func (s *serviceImpl) Request(ctx context.Context, bookingID, ownerID string) (res dto.PayoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RequestPayout")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.bookings.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.OwnerID != ownerID ||
		booking.Status != constant.BookingStatusCompleted ||
		booking.PaymentStatus != constant.PaymentStatusPaid {
		return res, failure.BadRequestFromString(msgNotEligible) // nolint:wrapcheck
	}

	exists, err := s.repo.Exist(ctx, shared.FilterByID(booking.ID, model.FieldBookingID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to check payout existence")

		return res, fmt.Errorf("failed to check payout existence: %w", err)
	}

	if exists {
		return res, failure.Conflict(msgAlreadyPaidOut) // nolint:wrapcheck
	}

	accountID, err := s.onboardedAccount(ctx, ownerID)
	if err != nil {
		return res, err
	}

	transfer, err := s.gateway.CreateTransfer(ctx, payment.TransferRequest{
		Amount:      booking.Subtotal,
		Currency:    s.cfg.Payment.Currency,
		Destination: accountID,
		BookingID:   booking.ID,
		OwnerID:     ownerID,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to transfer payout")

		return res, fmt.Errorf("failed to transfer payout: %w", err)
	}

	now := timezone.Now()
	payout := model.Payout{
		ID:          uuid.NewString(),
		BookingID:   booking.ID,
		OwnerID:     ownerID,
		Amount:      booking.Subtotal,
		PlatformFee: booking.ServiceFee,
		Status:      constant.PayoutStatusPending,
		TransferID:  transfer.ID,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  ownerID,
			ModifiedBy: ownerID,
		},
	}

	if err = s.repo.Insert(ctx, payout); err != nil {
		// The transfer already happened; surface the error so the ledger
		// gap is reconciled manually instead of double-transferring.
		log.Error().Err(err).Str("booking_id", booking.ID).Str("transfer_id", transfer.ID).
			Msg("failed to record payout after transfer")

		return res, fmt.Errorf("failed to record payout: %w", err)
	}

	err = s.bookings.Update(ctx, map[string]any{
		bookingModel.FieldPayoutStatus: constant.PayoutStatusPending,
		constant.FieldModifiedAt:       now,
		constant.FieldModifiedBy:       ownerID,
	}, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to update booking payout status")

		return res, fmt.Errorf("failed to update booking payout status: %w", err)
	}

	s.notifyPayout(ctx, payout)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllPayout, cacheCountPayout)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cachePayoutBalance, ownerID)); err != nil {
			log.Error().Err(err).Msg("failed to delete payout balance cache")
		}
	}()

	res.FromModel(payout)

	return res, nil
}

// Connect provisions the owner's connected payout account and returns a
// fresh onboarding link. Calling it again before onboarding finishes
// reuses the stored account and just mints a new link.
func (s *serviceImpl) Connect(ctx context.Context, ownerID string) (res dto.ConnectResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConnectPayoutAccount")
	defer scope.End()
	defer scope.TraceIfError(err)

	profile, err := s.profiles.Get(ctx, shared.FilterByID(ownerID, profileModel.FieldID, profileModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to get profile")

		return res, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.ID == constant.Empty {
		return res, failure.NotFound("profile not found") // nolint:wrapcheck
	}

	accountID := profile.PayoutAccountID.String
	if !profile.PayoutAccountID.Valid || accountID == constant.Empty {
		accountID, err = s.gateway.CreateAccount(ctx, profile.Email)
		if err != nil {
			return res, fmt.Errorf("failed to create payout account: %w", err)
		}

		err = s.profiles.Update(ctx, map[string]any{
			profileModel.FieldPayoutAccountID: accountID,
			constant.FieldModifiedAt:          timezone.Now(),
			constant.FieldModifiedBy:          ownerID,
		}, shared.FilterByID(ownerID, profileModel.FieldID, profileModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to persist payout account id")

			return res, fmt.Errorf("failed to persist payout account id: %w", err)
		}
	}

	url, err := s.gateway.CreateAccountLink(ctx, accountID)
	if err != nil {
		return res, fmt.Errorf("failed to create onboarding link: %w", err)
	}

	return dto.ConnectResponse{AccountID: accountID, OnboardingURL: url}, nil
}

func (s *serviceImpl) Balance(ctx context.Context, ownerID string) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".PayoutBalance")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cachePayoutBalance, ownerID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for payout balance")

		return res, nil
	}

	accountID, err := s.onboardedAccount(ctx, ownerID)
	if err != nil {
		return res, err
	}

	balance, err := s.gateway.GetBalance(ctx, accountID)
	if err != nil {
		return res, fmt.Errorf("failed to get payout balance: %w", err)
	}

	res = dto.BalanceResponse{
		Available: balance.Available,
		Pending:   balance.Pending,
		Currency:  balance.Currency,
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save payout balance to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) History(ctx context.Context, ownerID string, params gDto.QueryParams) (res dto.GetPayoutsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".PayoutHistory")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(ownerID, model.FieldOwnerID, model.TableName)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPayout, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for payouts")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payouts")

		return res, fmt.Errorf("failed to count payouts: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payouts")

		return res, fmt.Errorf("failed to get payouts: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save payouts to cache")
		}
	}()

	return res, nil
}

// onboardedAccount resolves the owner's connected account id and checks
// onboarding completed. The local payouts_enabled flag is a cache of the
// processor's answer and is refreshed when it flips.
func (s *serviceImpl) onboardedAccount(ctx context.Context, ownerID string) (string, error) {
	profile, err := s.profiles.Get(ctx, shared.FilterByID(ownerID, profileModel.FieldID, profileModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to get profile")

		return constant.Empty, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.ID == constant.Empty || !profile.PayoutAccountID.Valid || profile.PayoutAccountID.String == constant.Empty {
		return constant.Empty, failure.BadRequestFromString(msgAccountNotReady) // nolint:wrapcheck
	}

	accountID := profile.PayoutAccountID.String

	if profile.PayoutsEnabled {
		return accountID, nil
	}

	onboarded, err := s.gateway.AccountOnboarded(ctx, accountID)
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to check payout account: %w", err)
	}

	if !onboarded {
		return constant.Empty, failure.BadRequestFromString(msgAccountNotReady) // nolint:wrapcheck
	}

	err = s.profiles.Update(ctx, map[string]any{
		profileModel.FieldPayoutsEnabled: true,
		constant.FieldModifiedAt:         timezone.Now(),
		constant.FieldModifiedBy:         ownerID,
	}, shared.FilterByID(ownerID, profileModel.FieldID, profileModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to persist payouts enabled flag")
	}

	return accountID, nil
}

func (s *serviceImpl) notifyPayout(ctx context.Context, payout model.Payout) {
	err := s.notifier.Create(ctx, notificationDto.CreateNotificationRequest{
		UserID: payout.OwnerID,
		Type:   constant.NotificationPayoutInitiated,
		Title:  "Payout on its way",
		Body:   fmt.Sprintf("A payout of %s is on its way to your account.", shared.FormatAmount(payout.Amount, s.cfg.Payment.Currency)),
		Data:   map[string]any{"booking_id": payout.BookingID, "transfer_id": payout.TransferID},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", payout.BookingID).Msg("failed to notify owner of payout")
	}
}
