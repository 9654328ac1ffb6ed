// Package config reads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Key is one HMAC signing secret and the id written into token headers.
type Key struct {
	ID     string
	Secret string
}

// Config holds runtime settings for the bookshelf service.
//
//   - Addr: HTTP bind address.
//   - SigningKey: active token signing key (JWT_SECRET / JWT_KEY_ID).
//   - PreviousKeys: retired keys still accepted during rotation (JWT_PREVIOUS_KEYS="kid:secret,...").
//   - BcryptCost: cost factor used when hashing new passwords.
//   - AuthRate / AuthBurst: per-client limit on login and register.
type Config struct {
	Addr            string
	SigningKey      Key
	PreviousKeys    []Key
	BcryptCost      int
	AuthRate        float64
	AuthBurst       int
	ShutdownTimeout time.Duration
}

var ErrMissingSecret = errors.New("JWT_SECRET is required")

// ConfigFromEnv builds a Config from environment variables. The signing
// secret has no default; startup must fail without one.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Addr:            "0.0.0.0:8431",
		BcryptCost:      10,
		AuthRate:        5,
		AuthBurst:       10,
		ShutdownTimeout: 5 * time.Second,
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, ErrMissingSecret
	}
	kid := os.Getenv("JWT_KEY_ID")
	if kid == "" {
		kid = "primary"
	}
	cfg.SigningKey = Key{ID: kid, Secret: secret}

	prev, err := parseKeys(os.Getenv("JWT_PREVIOUS_KEYS"))
	if err != nil {
		return Config{}, err
	}
	for _, k := range prev {
		if k.ID == kid {
			return Config{}, fmt.Errorf("JWT_PREVIOUS_KEYS: key id %q duplicates the active key", k.ID)
		}
	}
	cfg.PreviousKeys = prev

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 4 || n > 31 {
			return Config{}, fmt.Errorf("BCRYPT_COST: invalid value %q", v)
		}
		cfg.BcryptCost = n
	}
	if v := os.Getenv("AUTH_RATE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("AUTH_RATE_RPS: invalid value %q", v)
		}
		cfg.AuthRate = f
	}
	if v := os.Getenv("AUTH_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("AUTH_RATE_BURST: invalid value %q", v)
		}
		cfg.AuthBurst = n
	}
	return cfg, nil
}

// parseKeys reads "kid:secret,kid2:secret2". Empty input yields no keys.
func parseKeys(raw string) ([]Key, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var keys []Key
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, secret, ok := strings.Cut(part, ":")
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("JWT_PREVIOUS_KEYS: malformed entry %q", part)
		}
		keys = append(keys, Key{ID: id, Secret: secret})
	}
	return keys, nil
}
