package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvAuthToken = "ANTHROPIC_AUTH_TOKEN"
	EnvBaseURL   = "ANTHROPIC_BASE_URL"
	envPrefix    = "GLM_USAGE"
)

type Config struct {
	AuthToken string   `yaml:"auth_token" mapstructure:"auth_token"`
	BaseURL   string   `yaml:"base_url" mapstructure:"base_url"`
	Settings  Settings `yaml:"settings" mapstructure:"settings"`
}

type Settings struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	APIPort  int           `yaml:"api_port" mapstructure:"api_port"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Credentials returns the two inputs the platform resolver needs.
func (c *Config) Credentials() platform.Credentials {
	return platform.Credentials{
		AuthToken: c.AuthToken,
		BaseURL:   c.BaseURL,
	}
}

// Load reads the config file (if any) and the environment. Token and base URL
// missing from both are taken from ~/.claude/settings.json when present.
func Load(configFile string) (*Config, error) {
	return load(configFile, ClaudeSettingsPath())
}

func load(configFile, claudeSettings string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if dir := DefaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	defaults := DefaultConfig()
	v.SetDefault("settings.timeout", defaults.Settings.Timeout)
	v.SetDefault("settings.api_port", defaults.Settings.APIPort)
	v.SetDefault("settings.cache_ttl", defaults.Settings.CacheTTL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("auth_token", EnvAuthToken)
	v.BindEnv("base_url", EnvBaseURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, err
	}

	cfg.AuthToken = strings.TrimSpace(expandFromFile(v, "auth_token", EnvAuthToken, cfg.AuthToken))
	cfg.BaseURL = strings.TrimSpace(expandFromFile(v, "base_url", EnvBaseURL, cfg.BaseURL))

	if cfg.AuthToken == "" || cfg.BaseURL == "" {
		token, baseURL := readClaudeSettings(claudeSettings)
		if cfg.AuthToken == "" {
			cfg.AuthToken = token
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// Path is the file Save writes to: configFile, or config.yaml in DefaultDir.
func Path(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	dir := DefaultDir()
	if dir == "" {
		return "", errors.New("cannot determine home directory; pass --config")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Save(cfg *Config, configFile string) error {
	path, err := Path(configFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			APIPort:  3456,
			CacheTTL: 60 * time.Second,
		},
	}
}

// DefaultDir is $HOME/.config/glm-usage, or "" when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "glm-usage")
}

// expandFromFile expands ${VAR} references only in values that came from the
// config file. Values taken from the environment are used as given.
func expandFromFile(v *viper.Viper, key, env, value string) string {
	if os.Getenv(env) != "" || !v.InConfig(key) {
		return value
	}
	return ExpandEnvVars(value)
}

func ExpandEnvVars(s string) string {
	return os.ExpandEnv(s)
}
