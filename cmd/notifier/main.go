package main

import (
	"context"
	"os/signal"
	"syscall"

	"rentgear/config"
	"rentgear/infras/kafka"
	"rentgear/infras/mailer"
	"rentgear/internal/domains/notification/model/dto"
	"rentgear/shared/logger"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The notifier consumes email dispatch requests published by the
// notification service and delivers them through the mail provider.
// Delivery is at-least-once: a crash between delivery and commit can
// repeat an email, which is acceptable for transactional mail.
func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)
	sender := mailer.New(cfg)

	log.Info().Str("topic", cfg.Kafka.Topics.Email).Msg("Starting email dispatch consumer.")

	client.Consume(ctx, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topics.Email, func(msg kafkaGo.Message) {
		decoded, err := kafka.DecodeKafkaMessage[dto.EmailRequest](msg)
		if err != nil {
			log.Error().Err(err).Msg("Skipping malformed email dispatch request.")

			return
		}

		req, ok := decoded.Value.(dto.EmailRequest)
		if !ok {
			log.Error().Msg("Skipping email dispatch request with unexpected payload type.")

			return
		}

		err = sender.Send(ctx, mailer.Mail{
			To:      req.To,
			Subject: req.Subject,
			HTML:    req.HTML,
			Text:    req.Text,
		})
		if err != nil {
			log.Error().Err(err).Str("to", req.To).Msg("Failed to deliver email.")
		}
	})

	log.Info().Msg("Email dispatch consumer stopped.")
}
