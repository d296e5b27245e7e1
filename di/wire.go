//go:build wireinject
// +build wireinject

package di

import (
	"rentgear/config"
	"rentgear/infras/jwt"
	"rentgear/infras/kafka"
	"rentgear/infras/otel"
	"rentgear/infras/payment"
	"rentgear/infras/postgres"
	"rentgear/infras/redis"
	"rentgear/infras/s3"
	"rentgear/permissions"
	"rentgear/shared/cache"
	"rentgear/transport/http"
	"rentgear/transport/http/middleware"
	"rentgear/transport/http/router"

	availabilityRepository "rentgear/internal/domains/availability/repository"
	bookingRepository "rentgear/internal/domains/booking/repository"
	bookingService "rentgear/internal/domains/booking/service"
	equipmentRepository "rentgear/internal/domains/equipment/repository"
	equipmentService "rentgear/internal/domains/equipment/service"
	notificationRepository "rentgear/internal/domains/notification/repository"
	notificationService "rentgear/internal/domains/notification/service"
	paymentRepository "rentgear/internal/domains/payment/repository"
	payoutRepository "rentgear/internal/domains/payout/repository"
	payoutService "rentgear/internal/domains/payout/service"
	profileRepository "rentgear/internal/domains/profile/repository"
	reminderService "rentgear/internal/domains/reminder/service"

	bookingHandler "rentgear/internal/handlers/booking"
	equipmentHandler "rentgear/internal/handlers/equipment"
	payoutHandler "rentgear/internal/handlers/payout"
	webhookHandler "rentgear/internal/handlers/webhook"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	payment.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	bookingService.NewLifecycle,
)

var payoutDomain = wire.NewSet(
	payoutRepository.New,
	payoutService.New,
)

var equipmentDomain = wire.NewSet(
	equipmentRepository.New,
	equipmentService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var supportingRepositories = wire.NewSet(
	availabilityRepository.New,
	paymentRepository.New,
	profileRepository.New,
)

var domains = wire.NewSet(
	bookingDomain,
	payoutDomain,
	equipmentDomain,
	notificationDomain,
	supportingRepositories,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	webhookHandler.New,
	bookingHandler.New,
	payoutHandler.New,
	equipmentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

// InitializeReminder builds the reminder sweep used by cmd/sweep.
func InitializeReminder() reminderService.Reminder {
	wire.Build(
		config.Get,
		otel.New,
		postgres.New,
		kafka.New,
		bookingRepository.New,
		profileRepository.New,
		notificationRepository.New,
		notificationService.New,
		reminderService.New,
	)

	return nil
}
