package passwordreset_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	userDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/passwordreset"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	users      map[int64]*userDatamodel.User
	shouldFail bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]*userDatamodel.User)}
}

func (m *mockRepo) GetByEmail(email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) GetByID(id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.users[id], nil
}

func (m *mockRepo) UpdatePassword(id int64, passwordHash string) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = passwordHash
	return nil
}

var _ = Describe("Password Reset Service", func() {
	var (
		repo    *mockRepo
		bus     *events.EventBus
		tokens  *passwordreset.TokenGenerator
		service *passwordreset.Service
		logger  *slog.Logger
		now     time.Time

		published chan *events.PasswordResetRequestedEvent
	)

	const frontendURL = "https://tracker.example.com"

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockRepo()
		bus = events.NewEventBus(logger)
		now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		tokens = passwordreset.NewTokenGenerator("test-secret", 72*time.Hour).
			WithClock(func() time.Time { return now })
		service = passwordreset.NewService(repo, tokens, bus, frontendURL, bcrypt.MinCost, logger)

		published = make(chan *events.PasswordResetRequestedEvent, 1)
		bus.Subscribe(events.EventTypePasswordResetRequested, func(ctx context.Context, event events.Event) error {
			published <- event.(*events.PasswordResetRequestedEvent)
			return nil
		})
	})

	addUser := func(id int64, email, password string) *userDatamodel.User {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		lastLogin := now.Add(-48 * time.Hour)
		u := &userDatamodel.User{
			ID:           id,
			Username:     email,
			Email:        email,
			PasswordHash: string(hash),
			LastLoginAt:  &lastLogin,
		}
		repo.users[id] = u
		return u
	}

	Describe("RequestReset", func() {
		It("publishes an event carrying a working reset link", func() {
			u := addUser(7, "alice@mail.com", "old-password")

			err := service.RequestReset(context.Background(), passwordreset.RequestDTO{Email: "alice@mail.com"})
			Expect(err).NotTo(HaveOccurred())

			var event *events.PasswordResetRequestedEvent
			Eventually(published).Should(Receive(&event))
			Expect(event.Email).To(Equal("alice@mail.com"))
			prefix := frontendURL + "/reset-password/" + passwordreset.EncodeUID(7) + "/"
			Expect(event.Link).To(HavePrefix(prefix))

			// the token in the link must verify against current state
			token := event.Link[len(prefix):]
			Expect(tokens.Check(u.ID, u.PasswordHash, u.LastLoginAt, token)).To(BeTrue())
		})

		It("delivers the event on a context that outlives the request", func() {
			addUser(8, "bob@mail.com", "old-password")

			handlerCtx := make(chan context.Context, 1)
			bus.Subscribe(events.EventTypePasswordResetRequested, func(ctx context.Context, _ events.Event) error {
				handlerCtx <- ctx
				return nil
			})

			reqCtx, cancel := context.WithCancel(context.Background())
			err := service.RequestReset(reqCtx, passwordreset.RequestDTO{Email: "bob@mail.com"})
			Expect(err).NotTo(HaveOccurred())
			cancel()

			var ctx context.Context
			Eventually(handlerCtx).Should(Receive(&ctx))
			Consistently(ctx.Err, 100*time.Millisecond).Should(BeNil())
		})

		It("succeeds silently for an unknown email", func() {
			err := service.RequestReset(context.Background(), passwordreset.RequestDTO{Email: "ghost@mail.com"})
			Expect(err).NotTo(HaveOccurred())
			Consistently(published, 100*time.Millisecond).ShouldNot(Receive())
		})

		It("rejects an invalid email", func() {
			err := service.RequestReset(context.Background(), passwordreset.RequestDTO{Email: "not-an-email"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ConfirmReset", func() {
		var (
			u     *userDatamodel.User
			uid   string
			token string
		)

		BeforeEach(func() {
			u = addUser(7, "alice@mail.com", "old-password")
			uid = passwordreset.EncodeUID(7)
			token = tokens.Generate(u.ID, u.PasswordHash, u.LastLoginAt)
		})

		confirm := func(p1, p2 string) error {
			return service.ConfirmReset(uid, token, passwordreset.ConfirmDTO{
				NewPassword1: p1,
				NewPassword2: p2,
			})
		}

		It("sets the new password", func() {
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("brand-new-pass"))).To(Succeed())
		})

		It("invalidates the token once used", func() {
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(Succeed())
			err := confirm("another-pass-123", "another-pass-123")
			Expect(err).To(MatchError(passwordreset.ErrInvalidLink))
		})

		It("rejects mismatched passwords", func() {
			err := confirm("brand-new-pass", "different-pass")
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(passwordreset.ErrInvalidLink))
		})

		It("rejects a garbled uid", func() {
			uid = "%%%"
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(MatchError(passwordreset.ErrInvalidLink))
		})

		It("rejects a uid for a missing user", func() {
			uid = passwordreset.EncodeUID(999)
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(MatchError(passwordreset.ErrInvalidLink))
		})

		It("rejects an expired token", func() {
			now = now.Add(73 * time.Hour)
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(MatchError(passwordreset.ErrInvalidLink))
		})

		It("rejects the token after a fresh login", func() {
			newLogin := now
			u.LastLoginAt = &newLogin
			Expect(confirm("brand-new-pass", "brand-new-pass")).To(MatchError(passwordreset.ErrInvalidLink))
		})
	})
})
