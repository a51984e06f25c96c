// Package notification handles transactional email around booking lifecycle
// events. Emails are enqueued as asynq tasks and rendered/sent by the worker
// in cron/worker.go, so a slow or failing mail host never sits on the request
// path.
package notification

import (
	"encoding/json"

	"slotwise/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeEmailSend = "email:send"

// Email templates.
const (
	TemplateBookingConfirmed   = "booking_confirmed"
	TemplateBookingCancelled   = "booking_cancelled"
	TemplateBookingRescheduled = "booking_rescheduled"
)

// EmailTask is the asynq payload for a transactional email.
type EmailTask struct {
	Template  string `json:"template"`
	BookingID string `json:"bookingId"`
}

// AsynqNotifier enqueues email tasks. All methods are fire-and-forget:
// enqueue failures are logged and swallowed.
type AsynqNotifier struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewAsynqNotifier constructs the notifier on the shared redis task queue.
func NewAsynqNotifier(logger *zap.Logger) *AsynqNotifier {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueue,
	})
	return &AsynqNotifier{client: client, logger: logger}
}

func (n *AsynqNotifier) BookingConfirmed(bookingID string) {
	n.enqueue(TemplateBookingConfirmed, bookingID)
}

func (n *AsynqNotifier) BookingCancelled(bookingID string) {
	n.enqueue(TemplateBookingCancelled, bookingID)
}

func (n *AsynqNotifier) BookingRescheduled(bookingID string) {
	n.enqueue(TemplateBookingRescheduled, bookingID)
}

func (n *AsynqNotifier) enqueue(template, bookingID string) {
	payload, err := json.Marshal(EmailTask{Template: template, BookingID: bookingID})
	if err != nil {
		n.logger.Error("failed to marshal email task", zap.Error(err))
		return
	}
	task := asynq.NewTask(TypeEmailSend, payload)
	if _, err := n.client.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		n.logger.Warn("failed to enqueue email task",
			zap.String("template", template),
			zap.String("bookingId", bookingID),
			zap.Error(err))
	}
}
