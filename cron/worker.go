package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"slotwise/config"
	bookingRepo "slotwise/database/repository/booking"
	providerRepo "slotwise/database/repository/provider"
	"slotwise/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EmailWorker consumes queued transactional email tasks.
type EmailWorker struct {
	Bookings  bookingRepo.BookingRepository
	Providers providerRepo.ProviderRepository
	Logger    *zap.Logger
}

// Run starts the asynq server and blocks until it stops.
func (w *EmailWorker) Run() error {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueue,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeEmailSend, w.handleEmailTask)

	w.Logger.Info("starting email worker")
	return srv.Run(mux)
}

func (w *EmailWorker) handleEmailTask(ctx context.Context, task *asynq.Task) error {
	var payload notification.EmailTask
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("malformed email task payload: %w", err)
	}

	b, err := w.Bookings.GetByID(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", payload.BookingID, err)
	}

	provider, err := w.Providers.GetByID(ctx, b.ProviderID)
	if err != nil {
		return fmt.Errorf("failed to load provider %s: %w", b.ProviderID, err)
	}

	subject, body := notification.RenderSummary(payload.Template, b, provider.Name)

	// The provider's address comes from their profile. Requester contact
	// details live with the identity collaborator, which is out of scope, so
	// only the provider copy is sent here.
	if err := notification.SendMail(provider.Email, subject, body); err != nil {
		w.Logger.Warn("email delivery failed",
			zap.String("bookingId", b.ID),
			zap.String("template", payload.Template),
			zap.Error(err))
		// Fire-and-forget: do not retry into a dead mail host forever.
		return nil
	}

	w.Logger.Info("email sent",
		zap.String("bookingId", b.ID),
		zap.String("template", payload.Template))
	return nil
}
