package passwordreset_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/finance-tracker/internal/passwordreset"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPasswordReset(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Password Reset Suite")
}

var _ = Describe("TokenGenerator", func() {
	var (
		gen       *passwordreset.TokenGenerator
		now       time.Time
		lastLogin time.Time
	)

	const (
		userID = int64(42)
		hash   = "$2a$10$abcdefghijklmnopqrstuv"
	)

	BeforeEach(func() {
		now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		lastLogin = now.Add(-24 * time.Hour)
		gen = passwordreset.NewTokenGenerator("test-secret", 72*time.Hour).
			WithClock(func() time.Time { return now })
	})

	It("accepts a freshly minted token", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		Expect(gen.Check(userID, hash, &lastLogin, token)).To(BeTrue())
	})

	It("accepts a token right at the end of the window", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		now = now.Add(72 * time.Hour)
		Expect(gen.Check(userID, hash, &lastLogin, token)).To(BeTrue())
	})

	It("rejects a token past the timeout", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		now = now.Add(72*time.Hour + time.Second)
		Expect(gen.Check(userID, hash, &lastLogin, token)).To(BeFalse())
	})

	It("rejects the token after the password changes", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		Expect(gen.Check(userID, "$2a$10$differenthash", &lastLogin, token)).To(BeFalse())
	})

	It("rejects the token after the user logs in again", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		newLogin := now
		Expect(gen.Check(userID, hash, &newLogin, token)).To(BeFalse())
	})

	It("rejects a token minted for another user", func() {
		token := gen.Generate(userID, hash, &lastLogin)
		Expect(gen.Check(userID+1, hash, &lastLogin, token)).To(BeFalse())
	})

	It("handles accounts that never logged in", func() {
		token := gen.Generate(userID, hash, nil)
		Expect(gen.Check(userID, hash, nil, token)).To(BeTrue())
		Expect(gen.Check(userID, hash, &lastLogin, token)).To(BeFalse())
	})

	It("rejects malformed tokens", func() {
		Expect(gen.Check(userID, hash, &lastLogin, "")).To(BeFalse())
		Expect(gen.Check(userID, hash, &lastLogin, "no-dash-but-wrong")).To(BeFalse())
		Expect(gen.Check(userID, hash, &lastLogin, "notbase36!-abcdef")).To(BeFalse())
	})
})

var _ = Describe("UID encoding", func() {
	It("round-trips a user id", func() {
		uid := passwordreset.EncodeUID(42)
		id, err := passwordreset.DecodeUID(uid)
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(42)))
	})

	It("rejects garbage", func() {
		_, err := passwordreset.DecodeUID("!!!!")
		Expect(err).To(HaveOccurred())

		_, err = passwordreset.DecodeUID(passwordreset.EncodeUID(0))
		Expect(err).To(HaveOccurred())
	})
})
