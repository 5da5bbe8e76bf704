package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ClaudeSettingsPath is where Claude Code keeps its settings, including the
// env block that usually carries the GLM credentials.
func ClaudeSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "settings.json")
}

// readClaudeSettings returns the token and base URL from the env block of a
// Claude settings file. A missing or unreadable file yields empty strings.
func readClaudeSettings(path string) (token, baseURL string) {
	if path == "" {
		return "", ""
	}
	if _, err := os.Stat(path); err != nil {
		return "", ""
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return "", ""
	}

	token = strings.TrimSpace(v.GetString("env." + EnvAuthToken))
	baseURL = strings.TrimSpace(v.GetString("env." + EnvBaseURL))
	return token, baseURL
}
