package testutils

import (
	"testing"

	"github.com/rakshit0111/chat-app/internal/config"
)

// ConfigForTests returns a valid Config without requiring a .env file.
// t.Setenv scopes the variables to the test, so parallel packages never see
// each other's values.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "chatapp_test")
	t.Setenv("TOKEN_TTL", "1h")

	return config.New()
}
