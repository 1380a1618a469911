package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admision-uni/preinscripcion-api/pkg/config"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []WelcomeNotification
	done chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 8)}
}

func (s *recordingSender) SendWelcome(_ context.Context, n WelcomeNotification) error {
	s.mu.Lock()
	s.sent = append(s.sent, n)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *recordingSender) deliveries() []WelcomeNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WelcomeNotification(nil), s.sent...)
}

func TestNotificationServiceDeliversInBackground(t *testing.T) {
	sender := newRecordingSender()
	svc := NewNotificationService(sender, config.NotificacionConfig{Workers: 1, BufferSize: 4}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Welcome(WelcomeNotification{
		Email:          "maria@example.com",
		DocumentNumber: "71234567",
		SecurityCode:   "XY9ZQ",
	})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}

	deliveries := sender.deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "XY9ZQ", deliveries[0].SecurityCode)
}

func TestNotificationServiceWelcomeBeforeStartDoesNotPanic(t *testing.T) {
	sender := newRecordingSender()
	svc := NewNotificationService(sender, config.NotificacionConfig{}, nil)

	// Enqueue on a stopped queue logs and drops; the registration path must
	// never observe an error.
	svc.Welcome(WelcomeNotification{DocumentNumber: "71234567"})
	assert.Empty(t, sender.deliveries())
}
