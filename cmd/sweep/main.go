package main

import (
	"context"

	"rentgear/config"
	"rentgear/di"
	"rentgear/shared/logger"

	"github.com/rs/zerolog/log"
)

// Runs one reminder sweep and exits. Scheduled daily (cron or a
// Kubernetes CronJob); rerunning on the same day can repeat reminders,
// see the reminder service notes.
func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	reminder := di.InitializeReminder()

	res, err := reminder.Sweep(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Reminder sweep failed.")
	}

	log.Info().
		Int("pickup_reminders", res.PickupReminders).
		Int("return_reminders", res.ReturnReminders).
		Msg("Reminder sweep completed.")
}
