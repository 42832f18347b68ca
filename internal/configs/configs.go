/*
Package configs is responsible for loading and parsing the client's configuration settings.

It configures the client by reading operating system environment variables,
including the running environment, the collaboration server endpoints, the
local status server address, and the credentials used by the demo command.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// AppConfig contains all configuration parameters required for the client to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string

	// Server Endpoints
	ServerURL string
	SocketURL string

	// Local Status Server
	StatusAddr string

	// Demo Credentials (used by the demo command only)
	Email    string
	Password string
	Token    string
	DemoRoom string
}

// LoadConfig reads and parses the client configuration from environment variables.
// It provides default values for each configuration item and performs necessary validation.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// --- Server Endpoints ---
	cfg.ServerURL = strings.TrimRight(os.Getenv("LIVEROOM_SERVER_URL"), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:3001"
	}

	parsed, err := url.Parse(cfg.ServerURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid LIVEROOM_SERVER_URL %q", cfg.ServerURL)
	}

	// The socket endpoint defaults to the HTTP endpoint with a ws scheme.
	cfg.SocketURL = os.Getenv("LIVEROOM_SOCKET_URL")
	if cfg.SocketURL == "" {
		scheme := "ws"
		if parsed.Scheme == "https" {
			scheme = "wss"
		}
		cfg.SocketURL = fmt.Sprintf("%s://%s/ws", scheme, parsed.Host)
	}

	// --- Local Status Server ---
	cfg.StatusAddr = os.Getenv("LIVEROOM_STATUS_ADDR")
	if cfg.StatusAddr == "" {
		cfg.StatusAddr = "127.0.0.1:8090"
	}

	// --- Demo Credentials ---
	cfg.Email = os.Getenv("LIVEROOM_EMAIL")
	cfg.Password = os.Getenv("LIVEROOM_PASSWORD")
	cfg.Token = os.Getenv("LIVEROOM_TOKEN")

	if cfg.Token == "" && (cfg.Email == "" || cfg.Password == "") {
		return nil, fmt.Errorf("either LIVEROOM_TOKEN or both LIVEROOM_EMAIL and LIVEROOM_PASSWORD are required")
	}

	cfg.DemoRoom = os.Getenv("LIVEROOM_DEMO_ROOM")

	return cfg, nil
}
