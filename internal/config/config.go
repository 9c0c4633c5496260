package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "NAILBOX"
	configDir  = ".nailbox"
	configName = "config"
	configType = "toml"
)

const (
	KeyAPIBaseURL       = "api.base_url"
	KeyAPITimeout       = "api.timeout"
	KeyAuthAuthorizeURL = "auth.authorize_url"
	KeyAuthClientID     = "auth.client_id"
	KeyAuthReturnURL    = "auth.return_url"
	KeyAuthProvider     = "auth.provider"
	KeySessionPath      = "session.path"
	KeySecretsDir       = "secrets.dir"
	KeySecretsBackend   = "secrets.backend"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
)

const (
	SecretsBackendChain = "chain"
	SecretsBackendFile  = "file"
)

type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Session SessionConfig
	Secrets SecretsConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	AuthorizeURL string
	ClientID     string
	ReturnURL    string
	Provider     string
}

type SessionConfig struct {
	Path string
}

type SecretsConfig struct {
	Dir     string
	Backend string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads ~/.nailbox/config.toml when present and layers NAILBOX_*
// environment variables on top. A missing config file is not an error.
func Load() (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, homeDir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyAPIBaseURL, "http://localhost:3000/api/trpc")
	v.SetDefault(KeyAPITimeout, 30*time.Second)
	v.SetDefault(KeyAuthAuthorizeURL, "https://api.aurinko.io/v1/auth/authorize")
	v.SetDefault(KeyAuthClientID, "")
	v.SetDefault(KeyAuthReturnURL, "http://localhost:3000/api/aurinko/callback")
	v.SetDefault(KeyAuthProvider, "Office365")
	v.SetDefault(KeySessionPath, filepath.Join(homeDir, configDir, "session.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(homeDir, configDir, "secrets"))
	v.SetDefault(KeySecretsBackend, SecretsBackendChain)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL: v.GetString(KeyAPIBaseURL),
			Timeout: v.GetDuration(KeyAPITimeout),
		},
		Auth: AuthConfig{
			AuthorizeURL: v.GetString(KeyAuthAuthorizeURL),
			ClientID:     v.GetString(KeyAuthClientID),
			ReturnURL:    v.GetString(KeyAuthReturnURL),
			Provider:     v.GetString(KeyAuthProvider),
		},
		Session: SessionConfig{Path: v.GetString(KeySessionPath)},
		Secrets: SecretsConfig{
			Dir:     v.GetString(KeySecretsDir),
			Backend: strings.ToLower(v.GetString(KeySecretsBackend)),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}

	if cfg.API.Timeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %q", KeyAPITimeout, v.GetString(KeyAPITimeout))
	}
	switch cfg.Secrets.Backend {
	case SecretsBackendChain, SecretsBackendFile:
	default:
		return Config{}, fmt.Errorf("unsupported %s %q", KeySecretsBackend, cfg.Secrets.Backend)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("unsupported %s %q", KeyLogFormat, cfg.Log.Format)
	}

	return cfg, nil
}
