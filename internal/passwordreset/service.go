package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	userDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidLink covers every confirm failure that touches the uid or
// token: unknown user, bad uid encoding, forged or expired token. One
// error, one message, so the endpoint leaks nothing about accounts.
var ErrInvalidLink = errors.New("invalid or expired reset link")

type Repository interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	UpdatePassword(id int64, passwordHash string) error
}

type Service struct {
	repo        Repository
	tokens      *TokenGenerator
	eventBus    *events.EventBus
	frontendURL string
	bcryptCost  int
	logger      *slog.Logger
}

func NewService(repo Repository, tokens *TokenGenerator, eventBus *events.EventBus, frontendURL string, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		eventBus:    eventBus,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// RequestReset starts a reset for the account behind email. Unknown
// addresses are not an error: the caller always gets the same generic
// response, the mail simply is not sent.
func (s *Service) RequestReset(ctx context.Context, dto RequestDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("failed to look up account for reset", "error", err)
		return err
	}
	if u == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	token := s.tokens.Generate(u.ID, u.PasswordHash, u.LastLoginAt)
	link := fmt.Sprintf("%s/reset-password/%s/%s", s.frontendURL, EncodeUID(u.ID), token)

	// The mail handler runs after this request has already answered, so it
	// must not inherit the request's cancellation.
	if err := s.eventBus.Publish(context.WithoutCancel(ctx), events.NewPasswordResetRequestedEvent(u.ID, u.Email, link)); err != nil {
		s.logger.Error("failed to publish reset event", "error", err, "user_id", u.ID)
		return err
	}
	return nil
}

// ConfirmReset validates the uid/token pair and sets the new password.
// Succeeding rotates the stored hash, which invalidates the token that
// was just used along with any other outstanding one.
func (s *Service) ConfirmReset(uid, token string, dto ConfirmDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	userID, err := DecodeUID(uid)
	if err != nil {
		return ErrInvalidLink
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to load account for reset confirm", "error", err)
		return err
	}
	if u == nil {
		return ErrInvalidLink
	}

	if !s.tokens.Check(u.ID, u.PasswordHash, u.LastLoginAt, token) {
		return ErrInvalidLink
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword1), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash new password", "error", err)
		return err
	}

	if err := s.repo.UpdatePassword(u.ID, string(hash)); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", u.ID)
		return err
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}
