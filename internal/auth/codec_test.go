package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Principal{UserID: "1790000000000000001", Email: "alice@example.com", Role: "user"}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T, clock *fakeClock, previous ...SigningKey) *Codec {
	t.Helper()
	c, err := NewCodec(SigningKey{Kid: "k2", Secret: []byte("current-secret")}, previous, WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, err := c.Issue(alice, 6*time.Hour)
	require.NoError(t, err)

	got, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestCodec_ClaimsOnTheWire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, err := c.Issue(alice, 6*time.Hour)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)

	assert.Equal(t, "k2", parsed.Header["kid"])
	assert.Equal(t, "HS256", parsed.Header["alg"])
	assert.Equal(t, alice.Email, claims["email"])
	assert.Equal(t, alice.Role, claims["role"])
	assert.Equal(t, alice.UserID, claims["userId"])
	assert.InDelta(t, float64(clock.t.Add(6*time.Hour).Unix()), claims["exp"], 0)
}

func TestCodec_Expiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	c := newTestCodec(t, clock)

	tok, err := c.Issue(alice, time.Hour)
	require.NoError(t, err)

	clock.t = issued.Add(time.Hour - time.Second)
	_, err = c.Verify(tok)
	require.NoError(t, err)

	for _, at := range []time.Duration{time.Hour, time.Hour + time.Second, 48 * time.Hour} {
		clock.t = issued.Add(at)
		_, err = c.Verify(tok)
		assert.ErrorIs(t, err, ErrExpired, "verified at issue+%s", at)
	}
}

func TestCodec_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	tok, err := c.Issue(alice, time.Hour)
	require.NoError(t, err)

	// flip a character in the middle of the signature segment
	i := strings.LastIndex(tok, ".") + 5
	repl := byte('A')
	if tok[i] == 'A' {
		repl = 'B'
	}
	tampered := tok[:i] + string(repl) + tok[i+1:]

	got, err := c.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, Principal{}, got)
}

func TestCodec_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	tok, err := c.Issue(alice, time.Hour)
	require.NoError(t, err)

	other, err := c.Issue(Principal{UserID: "2", Email: "mallory@example.com", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = c.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other, err := NewCodec(SigningKey{Kid: "k2", Secret: []byte("someone-else")}, nil, WithClock(clock.Now))
	require.NoError(t, err)

	tok, err := other.Issue(alice, time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t, clock).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(t, &fakeClock{t: time.Now()})

	for _, in := range []string{"", "not-a-token", "not.a.jwt", "a.b.c.d"} {
		_, err := c.Verify(in)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestCodec_MissingClaims(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "1"})
	noExp.Header["kid"] = "k2"
	s, err := noExp.SignedString([]byte("current-secret"))
	require.NoError(t, err)
	_, err = c.Verify(s)
	assert.ErrorIs(t, err, ErrMalformed)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": clock.t.Add(time.Hour).Unix()})
	noUser.Header["kid"] = "k2"
	s, err = noUser.SignedString([]byte("current-secret"))
	require.NoError(t, err)
	_, err = c.Verify(s)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodec_RejectsNoneAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "1",
		"exp":    clock.t.Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_KeyRotation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	old, err := NewCodec(SigningKey{Kid: "k1", Secret: []byte("old-secret")}, nil, WithClock(clock.Now))
	require.NoError(t, err)
	oldTok, err := old.Issue(alice, time.Hour)
	require.NoError(t, err)

	rotated := newTestCodec(t, clock, SigningKey{Kid: "k1", Secret: []byte("old-secret")})
	got, err := rotated.Verify(oldTok)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	// once k1 is retired its tokens stop verifying
	_, err = newTestCodec(t, clock).Verify(oldTok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_TokenWithoutKidUsesActiveKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "1",
		"email":  "a@b.c",
		"role":   "user",
		"exp":    clock.t.Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("current-secret"))
	require.NoError(t, err)

	got, err := c.Verify(s)
	require.NoError(t, err)
	assert.Equal(t, "1", got.UserID)
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec(SigningKey{Kid: "k"}, nil)
	assert.Error(t, err)

	_, err = NewCodec(SigningKey{Kid: "k", Secret: []byte("s")}, []SigningKey{{Kid: "k", Secret: []byte("t")}})
	assert.Error(t, err)

	_, err = NewCodec(SigningKey{Kid: "k", Secret: []byte("s")}, []SigningKey{{Kid: "old"}})
	assert.Error(t, err)
}

func TestCodec_IssueRejectsNonPositiveTTL(t *testing.T) {
	c := newTestCodec(t, &fakeClock{t: time.Now()})
	_, err := c.Issue(alice, 0)
	assert.Error(t, err)
}
