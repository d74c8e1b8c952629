// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvValueMapper(t *testing.T) {
	t.Run("maps known variables onto config keys", func(t *testing.T) {
		key, value := envValueMapper("DATABASE_URL", "postgres://localhost/app")

		assert.Equal(t, "database.url", key)
		assert.Equal(t, "postgres://localhost/app", value)
	})

	t.Run("drops unmapped variables", func(t *testing.T) {
		key, value := envValueMapper("LANG", "en_US.UTF-8")

		assert.Empty(t, key)
		assert.Nil(t, value)
	})

	t.Run("splits CORS_ORIGINS on commas", func(t *testing.T) {
		key, value := envValueMapper(
			"CORS_ORIGINS",
			"https://app.example.com, https://staging.example.com",
		)

		assert.Equal(t, "cors.allowed_origins", key)
		assert.Equal(t, []string{
			"https://app.example.com",
			"https://staging.example.com",
		}, value)
	})

	t.Run("ignores empty entries in CORS_ORIGINS", func(t *testing.T) {
		key, value := envValueMapper("CORS_ORIGINS", "https://app.example.com,, ")

		assert.Equal(t, "cors.allowed_origins", key)
		assert.Equal(t, []string{"https://app.example.com"}, value)
	})
}
