package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"rentgear/config"
	"rentgear/infras/kafka"
	"rentgear/infras/otel"
	"rentgear/internal/domains/notification/model/dto"
	"rentgear/internal/domains/notification/repository"
	"rentgear/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	systemActor = "system"
)

// Notification persists in-app notifications and hands email requests to
// the dispatch topic. Both calls are best-effort from the callers' point
// of view: lifecycle and payout code logs failures and moves on.
type Notification interface {
	Create(ctx context.Context, req dto.CreateNotificationRequest) error
	Email(ctx context.Context, req dto.EmailRequest) error
}

type serviceImpl struct {
	repo  repository.Notification
	kafka kafka.Client
	cfg   *config.Config
	otel  otel.Otel
}

func New(repo repository.Notification, kafkaClient kafka.Client, cfg *config.Config, otel otel.Otel) Notification {
	return &serviceImpl{
		repo:  repo,
		kafka: kafkaClient,
		cfg:   cfg,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateNotificationRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateNotification")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.repo.Insert(ctx, req.ToModel(systemActor)); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Str("type", req.Type).Msg("failed to create notification")

		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (s *serviceImpl) Email(ctx context.Context, req dto.EmailRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".EmailNotification")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Email, kafka.Message{
		Key:   req.To,
		Value: req,
	})
	if err != nil {
		log.Error().Err(err).Str("to", req.To).Msg("failed to publish email dispatch request")

		return fmt.Errorf("failed to publish email dispatch request: %w", err)
	}

	return nil
}
