package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the bridge configuration shared by the host and renderer commands
type Config struct {
	WebsocketInterface            string `mapstructure:"websocket_interface"`
	WebsocketPort                 int    `mapstructure:"websocket_port"`
	WebsocketCertificate          string `mapstructure:"websocket_certificate"`
	WebsocketPrivateKey           string `mapstructure:"websocket_private_key"`
	WebsocketCertificateAuthority string `mapstructure:"websocket_certificate_authority"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// AuthSecret enables bearer token checks on the websocket endpoint when set.
	AuthSecret string `mapstructure:"auth_secret"`

	QueueSize         int           `mapstructure:"queue_size"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	FocusTokenTTL     time.Duration `mapstructure:"focus_token_ttl"`
	SDKVersion        string        `mapstructure:"sdk_version"`
	APLMaxVersion     string        `mapstructure:"apl_max_version"`
	SupportedSDKMajor int           `mapstructure:"supported_sdk_major"`
	RendererURL       string        `mapstructure:"renderer_url"`
}

// Default returns the configuration used when nothing else is provided
func Default() Config {
	return Config{
		WebsocketInterface: "127.0.0.1",
		WebsocketPort:      8933,
		LogLevel:           "info",
		LogFormat:          "json",
		QueueSize:          256,
		ShutdownTimeout:    10 * time.Second,
		FocusTokenTTL:      30 * time.Second,
		SDKVersion:         "2.9",
		APLMaxVersion:      "1.4",
		SupportedSDKMajor:  2,
		RendererURL:        "ws://127.0.0.1:8933/ws",
	}
}

// Addr returns the host:port the websocket server listens on
func (c Config) Addr() string {
	return net.JoinHostPort(c.WebsocketInterface, strconv.Itoa(c.WebsocketPort))
}

// TLSEnabled reports whether a certificate and key were configured
func (c Config) TLSEnabled() bool {
	return c.WebsocketCertificate != "" && c.WebsocketPrivateKey != ""
}

// Validate checks the configuration for values the bridge cannot run with
func (c Config) Validate() error {
	if c.WebsocketPort <= 0 || c.WebsocketPort > 65535 {
		return fmt.Errorf("websocket_port must be between 1 and 65535, got %d", c.WebsocketPort)
	}
	if (c.WebsocketCertificate == "") != (c.WebsocketPrivateKey == "") {
		return fmt.Errorf("websocket_certificate and websocket_private_key must be set together")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.FocusTokenTTL <= 0 {
		return fmt.Errorf("focus_token_ttl must be positive, got %s", c.FocusTokenTTL)
	}
	return nil
}
