package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/finance-tracker/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockUserRepo struct {
	username     string
	userID       int64
	passwordHash string
	lastLogin    *time.Time
	loginErr     error
}

func (m *mockUserRepo) GetCredentials(username string) (string, int64, error) {
	if username != m.username {
		return "", 0, errors.New("record not found")
	}
	return m.passwordHash, m.userID, nil
}

func (m *mockUserRepo) GetUser(userID int64) (*auth.User, error) {
	if userID != m.userID {
		return nil, errors.New("record not found")
	}
	return &auth.User{ID: m.userID, Username: m.username}, nil
}

func (m *mockUserRepo) UpdateLastLogin(userID int64, at time.Time) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	m.lastLogin = &at
	return nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *mockUserRepo
		service *auth.Service
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockUserRepo{
			username:     "alice",
			userID:       7,
			passwordHash: string(hash),
		}
		tokenGen := auth.NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.Access).NotTo(BeEmpty())
			Expect(tokens.Refresh).NotTo(BeEmpty())
			Expect(tokens.Access).NotTo(Equal(tokens.Refresh))
		})

		It("stamps last login on success", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLogin).NotTo(BeNil())
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			Expect(repo.lastLogin).To(BeNil())
		})

		It("rejects an unknown username with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "mallory", Password: "correct-password"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("requires both fields", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "alice"})
			Expect(err).To(HaveOccurred())
			_, err = service.Authenticate(auth.LoginDTO{Password: "correct-password"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidateAccessToken", func() {
		It("round-trips claims through the access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.Access)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("7"))
			Expect(claims.Username).To(Equal("alice"))
		})

		It("rejects a tampered token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(tokens.Access + "x")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "alice", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.Refresh)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.Access).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.Access)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Username).To(Equal("alice"))
		})

		It("rejects a forged refresh token", func() {
			otherGen := auth.NewJWTTokenGenerator("other-access-secret", "other-refresh-secret", 15*time.Minute, 7*24*time.Hour)
			forged, err := otherGen.GenerateRefreshToken("7", "alice")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(forged)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
