package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv pins every configuration variable to empty so ambient values
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT",
		"LIVEROOM_SERVER_URL",
		"LIVEROOM_SOCKET_URL",
		"LIVEROOM_STATUS_ADDR",
		"LIVEROOM_EMAIL",
		"LIVEROOM_PASSWORD",
		"LIVEROOM_TOKEN",
		"LIVEROOM_DEMO_ROOM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIVEROOM_TOKEN", "tok")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:3001", cfg.ServerURL)
	assert.Equal(t, "ws://localhost:3001/ws", cfg.SocketURL)
	assert.Equal(t, "127.0.0.1:8090", cfg.StatusAddr)
}

func TestLoadConfig_DerivesSecureSocketScheme(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIVEROOM_TOKEN", "tok")
	t.Setenv("LIVEROOM_SERVER_URL", "https://rooms.example.com/")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "https://rooms.example.com", cfg.ServerURL, "trailing slash is trimmed")
	assert.Equal(t, "wss://rooms.example.com/ws", cfg.SocketURL)
}

func TestLoadConfig_ExplicitSocketURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIVEROOM_TOKEN", "tok")
	t.Setenv("LIVEROOM_SOCKET_URL", "wss://edge.example.com/realtime")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "wss://edge.example.com/realtime", cfg.SocketURL)
}

func TestLoadConfig_CredentialsAcceptedInsteadOfToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIVEROOM_EMAIL", "ada@example.com")
	t.Setenv("LIVEROOM_PASSWORD", "hunter2")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", cfg.Email)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("LIVEROOM_EMAIL", "ada@example.com")
	_, err = LoadConfig()
	assert.Error(t, err, "an email without a password is not enough")
}

func TestLoadConfig_InvalidServerURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIVEROOM_TOKEN", "tok")
	t.Setenv("LIVEROOM_SERVER_URL", "not a url")

	_, err := LoadConfig()
	assert.Error(t, err)
}
