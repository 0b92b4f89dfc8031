package passwordreset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// tokenEpoch is the zero point for the timestamp baked into reset
// tokens. Tokens carry seconds since this instant, base36 encoded.
var tokenEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// macLen is how many bytes of the HMAC survive into the token.
const macLen = 20

// TokenGenerator mints and checks single-use password reset tokens.
// A token binds the user's id, current password hash and last login
// time, so changing the password or logging in invalidates every
// outstanding token without any server-side state.
type TokenGenerator struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

func NewTokenGenerator(secret string, timeout time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:  []byte(secret),
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (g *TokenGenerator) WithClock(now func() time.Time) *TokenGenerator {
	g.now = now
	return g
}

// Generate returns a token of the form <ts_b36>-<mac_hex> for the
// given user state.
func (g *TokenGenerator) Generate(userID int64, passwordHash string, lastLogin *time.Time) string {
	ts := int64(g.now().Sub(tokenEpoch) / time.Second)
	return g.tokenAt(userID, passwordHash, lastLogin, ts)
}

// Check reports whether token is genuine for the user state and still
// inside the timeout window.
func (g *TokenGenerator) Check(userID int64, passwordHash string, lastLogin *time.Time, token string) bool {
	tsPart, _, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	expected := g.tokenAt(userID, passwordHash, lastLogin, ts)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return false
	}

	now := int64(g.now().Sub(tokenEpoch) / time.Second)
	return now-ts <= int64(g.timeout/time.Second)
}

func (g *TokenGenerator) tokenAt(userID int64, passwordHash string, lastLogin *time.Time, ts int64) string {
	var loginStamp int64
	if lastLogin != nil {
		loginStamp = lastLogin.Unix()
	}

	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%d%s%d%d", userID, passwordHash, loginStamp, ts)
	digest := mac.Sum(nil)[:macLen]

	return strconv.FormatInt(ts, 36) + "-" + hex.EncodeToString(digest)
}

// EncodeUID turns a user id into the opaque uid segment of a reset
// link.
func EncodeUID(userID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
}

// DecodeUID reverses EncodeUID. Any malformed input yields an error;
// callers surface the same generic response as a bad token.
func DecodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid uid")
	}
	return id, nil
}
