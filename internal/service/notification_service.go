package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/admision-uni/preinscripcion-api/pkg/config"
	"github.com/admision-uni/preinscripcion-api/pkg/jobs"
)

// WelcomeNotification carries the data for the message sent after creation.
// The security code travels here because the applicant needs it out-of-band
// to unlock the one-time edit.
type WelcomeNotification struct {
	Email          string
	FullName       string
	DocumentNumber string
	SecurityCode   string
}

// NotificationSender delivers a welcome notification. Swap in a real mail
// integration by implementing this.
type NotificationSender interface {
	SendWelcome(ctx context.Context, n WelcomeNotification) error
}

// LogSender is the development sender: it only logs the delivery, mirroring
// what the office does while the mail gateway is not provisioned.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// SendWelcome logs the notification instead of delivering it.
func (s *LogSender) SendWelcome(_ context.Context, n WelcomeNotification) error {
	s.logger.Sugar().Infow("welcome notification",
		"email", n.Email,
		"documento", n.DocumentNumber,
	)
	return nil
}

// NotificationService dispatches welcome notifications through a background
// queue so delivery never blocks or fails the registration request.
type NotificationService struct {
	sender NotificationSender
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its queue.
func NewNotificationService(sender NotificationSender, cfg config.NotificacionConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, logger: logger}
	s.queue = jobs.NewQueue("notificaciones", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins background dispatch.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Welcome enqueues a welcome notification. Errors are logged, never returned:
// the registration already succeeded.
func (s *NotificationService) Welcome(n WelcomeNotification) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "welcome",
		Payload: n,
	})
	if err != nil {
		s.logger.Sugar().Warnw("failed to enqueue welcome notification", "documento", n.DocumentNumber, "error", err)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(WelcomeNotification)
	if !ok {
		s.logger.Sugar().Errorw("unexpected notification payload", "job_id", job.ID, "type", job.Type)
		return nil
	}
	return s.sender.SendWelcome(ctx, n)
}
