package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Callers match them with errors.Is; the wrapped
// detail is for logs only.
var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

// Codec issues and verifies HS256 access tokens. It holds no mutable state
// after construction and is safe for concurrent use.
type Codec struct {
	active SigningKey
	keys   map[string][]byte
	now    func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec signs with active and additionally accepts tokens signed by any
// of the previous keys, looked up by the kid header.
func NewCodec(active SigningKey, previous []SigningKey, opts ...Option) (*Codec, error) {
	if len(active.Secret) == 0 {
		return nil, errors.New("auth: active signing secret is empty")
	}
	c := &Codec{
		active: active,
		keys:   make(map[string][]byte, len(previous)+1),
		now:    time.Now,
	}
	c.keys[active.Kid] = active.Secret
	for _, k := range previous {
		if len(k.Secret) == 0 || k.Kid == "" {
			return nil, fmt.Errorf("auth: previous key %q is incomplete", k.Kid)
		}
		if _, dup := c.keys[k.Kid]; dup {
			return nil, fmt.Errorf("auth: duplicate key id %q", k.Kid)
		}
		c.keys[k.Kid] = k.Secret
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs p with the active key; the token expires ttl after now.
func (c *Codec) Issue(p Principal, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("auth: ttl must be positive, got %s", ttl)
	}
	now := c.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email:  p.Email,
		Role:   p.Role,
		UserID: p.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	if c.active.Kid != "" {
		tok.Header["kid"] = c.active.Kid
	}
	signed, err := tok.SignedString(c.active.Secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded Principal.
func (c *Codec) Verify(token string) (Principal, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFor,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Principal{}, classify(err)
	}
	if claims.UserID == "" {
		return Principal{}, fmt.Errorf("%w: userId claim missing", ErrMalformed)
	}
	return Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (c *Codec) keyFor(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return c.active.Secret, nil
	}
	secret, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key id %q", ErrInvalidSignature, kid)
	}
	return secret, nil
}

// classify folds jwt parser errors into the three verification kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
