package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_ADDR", "JWT_KEY_ID", "JWT_PREVIOUS_KEYS", "BCRYPT_COST", "AUTH_RATE_RPS", "AUTH_RATE_BURST"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	setBase(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8431", cfg.Addr)
	assert.Equal(t, Key{ID: "primary", Secret: "s3cret"}, cfg.SigningKey)
	assert.Empty(t, cfg.PreviousKeys)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.InDelta(t, 5.0, cfg.AuthRate, 0.001)
	assert.Equal(t, 10, cfg.AuthBurst)
}

func TestConfigFromEnv_MissingSecret(t *testing.T) {
	setBase(t)
	t.Setenv("JWT_SECRET", "")

	_, err := ConfigFromEnv()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestConfigFromEnv_Rotation(t *testing.T) {
	setBase(t)
	t.Setenv("JWT_KEY_ID", "2024-06")
	t.Setenv("JWT_PREVIOUS_KEYS", "2024-01:old, 2023-06:older")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "2024-06", cfg.SigningKey.ID)
	assert.Equal(t, []Key{{ID: "2024-01", Secret: "old"}, {ID: "2023-06", Secret: "older"}}, cfg.PreviousKeys)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"malformed previous key", "JWT_PREVIOUS_KEYS", "nocolon"},
		{"previous key reuses active id", "JWT_PREVIOUS_KEYS", "primary:x"},
		{"bcrypt cost too low", "BCRYPT_COST", "2"},
		{"bcrypt cost not a number", "BCRYPT_COST", "ten"},
		{"negative rate", "AUTH_RATE_RPS", "-1"},
		{"zero burst", "AUTH_RATE_BURST", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBase(t)
			t.Setenv(tc.key, tc.val)
			_, err := ConfigFromEnv()
			assert.Error(t, err)
		})
	}
}
