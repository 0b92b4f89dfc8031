package mailer_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/mailer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sentMail struct {
	kind string
	to   string
	body string
}

type mockMailer struct {
	sent       []sentMail
	shouldFail bool
}

func (m *mockMailer) SendPasswordReset(_ context.Context, to, link string) error {
	if m.shouldFail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{kind: "reset", to: to, body: link})
	return nil
}

func (m *mockMailer) SendWelcome(_ context.Context, to, username string) error {
	if m.shouldFail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{kind: "welcome", to: to, body: username})
	return nil
}

var _ = Describe("Subscriber", func() {
	var (
		bus  *events.EventBus
		mock *mockMailer
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		mock = &mockMailer{}
		mailer.NewSubscriber(mock, logger).Register(bus)
	})

	It("sends the reset link when a reset is requested", func() {
		evt := events.NewPasswordResetRequestedEvent(7, "alice@mail.com", "https://front/reset-password/Nw/tok")
		Expect(bus.PublishSync(context.Background(), evt)).To(Succeed())

		Expect(mock.sent).To(HaveLen(1))
		Expect(mock.sent[0].kind).To(Equal("reset"))
		Expect(mock.sent[0].to).To(Equal("alice@mail.com"))
		Expect(mock.sent[0].body).To(Equal("https://front/reset-password/Nw/tok"))
	})

	It("sends a welcome email when an account is created", func() {
		evt := events.NewUserRegisteredEvent(3, "bob", "bob@mail.com")
		Expect(bus.PublishSync(context.Background(), evt)).To(Succeed())

		Expect(mock.sent).To(HaveLen(1))
		Expect(mock.sent[0].kind).To(Equal("welcome"))
		Expect(mock.sent[0].to).To(Equal("bob@mail.com"))
		Expect(mock.sent[0].body).To(Equal("bob"))
	})

	It("surfaces mailer failures to the bus", func() {
		mock.shouldFail = true
		evt := events.NewUserRegisteredEvent(3, "bob", "bob@mail.com")
		Expect(bus.PublishSync(context.Background(), evt)).NotTo(Succeed())
	})
})
