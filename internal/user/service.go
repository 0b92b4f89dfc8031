package user

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/finance-tracker/internal/core/events"
)

type Repository interface {
	Create(u *User) error
	GetByID(userID int64) (*User, error)
	GetByUsername(username string) (*User, error)
	UsernameOrEmailExists(username, email string) (bool, error)
}

// CategorySeeder creates the default category taxonomy for a new account.
// Implemented by the category service.
type CategorySeeder interface {
	SeedDefaults(userID int64) error
}

type Service struct {
	repo       Repository
	seeder     CategorySeeder
	bus        *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, seeder CategorySeeder, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		seeder:     seeder,
		bus:        bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account and seeds its default categories. Seeding is an
// explicit step here rather than a persistence hook so the control flow stays
// visible and testable.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("registration validation failed", "error", err, "username", dto.Username)
		return nil, err
	}

	taken, err := s.repo.UsernameOrEmailExists(dto.Username, dto.Email)
	if err != nil {
		s.logger.Error("failed to check existing users", "error", err)
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	if err := s.seeder.SeedDefaults(u.ID); err != nil {
		// The account exists; a missing starter taxonomy is recoverable and
		// must not fail registration.
		s.logger.Error("failed to seed default categories", "error", err, "user_id", u.ID)
	}

	if s.bus != nil {
		if err := s.bus.Publish(context.Background(), events.NewUserRegisteredEvent(u.ID, u.Username, u.Email)); err != nil {
			s.logger.Error("failed to publish registration event", "error", err, "user_id", u.ID)
		}
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)

	return u, nil
}

// GetProfile returns the current user's public details.
func (s *Service) GetProfile(userID int64) (*ProfileResponse, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}, nil
}
