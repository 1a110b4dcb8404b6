package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "GUIBRIDGE"

// Load builds configuration from defaults, an optional YAML file and environment variables.
// Precedence: defaults < config file < env vars (including a .env file in the working directory).
func Load(logger *zap.Logger, explicitPath string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) && logger != nil {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("websocket_interface", cfg.WebsocketInterface)
	v.SetDefault("websocket_port", cfg.WebsocketPort)
	v.SetDefault("websocket_certificate", cfg.WebsocketCertificate)
	v.SetDefault("websocket_private_key", cfg.WebsocketPrivateKey)
	v.SetDefault("websocket_certificate_authority", cfg.WebsocketCertificateAuthority)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("auth_secret", cfg.AuthSecret)
	v.SetDefault("queue_size", cfg.QueueSize)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("focus_token_ttl", cfg.FocusTokenTTL)
	v.SetDefault("sdk_version", cfg.SDKVersion)
	v.SetDefault("apl_max_version", cfg.APLMaxVersion)
	v.SetDefault("supported_sdk_major", cfg.SupportedSDKMajor)
	v.SetDefault("renderer_url", cfg.RendererURL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if logger != nil {
			logger.Info("Loaded config file", zap.String("path", explicitPath))
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
