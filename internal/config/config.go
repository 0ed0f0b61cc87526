// Package config loads settings from ~/.config/mindmap/config.yaml and the
// MINDMAP_ environment, with sane defaults for everything.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Workspace         string
	AutosaveInterval  time.Duration
	ConflictThreshold time.Duration
	HistorySlots      int
	AIProvider        string
	AIAPIKey          string
	WebhookListenAddr string
}

// Load reads the config file if present and applies env overrides. A missing
// file is not an error.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		v.AddConfigPath(filepath.Join(home, ".config", "mindmap"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MINDMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("workspace", "default")
	v.SetDefault("autosave_interval", "30s")
	v.SetDefault("conflict_threshold", "1m")
	v.SetDefault("history_slots", 10)
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("webhook_listen_addr", ":8787")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return Config{}, err
		}
	}

	return Config{
		Workspace:         v.GetString("workspace"),
		AutosaveInterval:  v.GetDuration("autosave_interval"),
		ConflictThreshold: v.GetDuration("conflict_threshold"),
		HistorySlots:      v.GetInt("history_slots"),
		AIProvider:        v.GetString("ai_provider"),
		AIAPIKey:          v.GetString("ai_api_key"),
		WebhookListenAddr: v.GetString("webhook_listen_addr"),
	}, nil
}
