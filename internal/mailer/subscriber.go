package mailer

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal/core/events"
)

// Subscriber bridges the event bus to the mailer so the request
// handler never waits on SMTP.
type Subscriber struct {
	mailer Mailer
	logger *slog.Logger
}

func NewSubscriber(mailer Mailer, logger *slog.Logger) *Subscriber {
	return &Subscriber{mailer: mailer, logger: logger}
}

// Register attaches the subscriber to the bus.
func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypePasswordResetRequested, s.handlePasswordReset)
	bus.Subscribe(events.EventTypeUserRegistered, s.handleUserRegistered)
}

func (s *Subscriber) handlePasswordReset(ctx context.Context, event events.Event) error {
	reset, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		s.logger.Error("unexpected payload for reset event", "event_id", event.EventID())
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, reset.Email, reset.Link); err != nil {
		s.logger.Error("failed to send reset email", "error", err, "user_id", reset.UserID)
		return err
	}

	s.logger.Info("password reset email sent", "user_id", reset.UserID)
	return nil
}

func (s *Subscriber) handleUserRegistered(ctx context.Context, event events.Event) error {
	registered, ok := event.(*events.UserRegisteredEvent)
	if !ok {
		s.logger.Error("unexpected payload for registration event", "event_id", event.EventID())
		return nil
	}

	if err := s.mailer.SendWelcome(ctx, registered.Email, registered.Username); err != nil {
		s.logger.Error("failed to send welcome email", "error", err, "user_id", registered.UserID)
		return err
	}

	s.logger.Info("welcome email sent", "user_id", registered.UserID)
	return nil
}
