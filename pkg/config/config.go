// Copyright 2024 The rpod Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config resolves rpod's on-disk layout and the non-secret
// app settings layered on top of it: environment overrides first, an
// optional config.toml second, hardcoded defaults last. It never
// touches aliases, templates, or scheduled tasks — that's pkg/store's
// job.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gpupodctl/rpod/pkg/fsutil"
)

const (
	EnvAPIKey = "RUNPOD_API_KEY"

	apiKeyFileName      = "runpod_api_key"
	remoteSetupFileName = "setup_remote.sh"
	localSetupFileName  = "setup_local.sh"

	appName = "rpod"
)

// Paths bundles the filesystem locations rpod reads and writes.
type Paths struct {
	ConfigDir      string
	APIKeyFile     string
	RemoteSetup    string
	LocalSetup     string
	SSHConfigFile  string
	LaunchAgentDir string
	LogsDir        string
}

// DefaultPaths returns the standard on-disk layout rooted at the user's
// home directory, matching original's CONFIG_DIR = ~/.config/rp (ported
// to ~/.config/rpod for this tool's own name).
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}

	configDir := filepath.Join(home, ".config", appName)
	return Paths{
		ConfigDir:      configDir,
		APIKeyFile:     filepath.Join(configDir, apiKeyFileName),
		RemoteSetup:    filepath.Join(configDir, remoteSetupFileName),
		LocalSetup:     filepath.Join(configDir, localSetupFileName),
		SSHConfigFile:  filepath.Join(home, ".ssh", "config"),
		LaunchAgentDir: filepath.Join(home, "Library", "LaunchAgents"),
		LogsDir:        filepath.Join(home, "Library", "Logs"),
	}, nil
}

// Settings are the non-secret, overridable app settings: polling
// cadence, log verbosity, and an alternate config directory. They live
// in config.toml, never in pods.json.
type Settings struct {
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	LogVerbosity        int    `mapstructure:"log_verbosity"`
	ConfigDir           string `mapstructure:"config_dir"`
}

func defaultSettings() Settings {
	return Settings{
		PollIntervalSeconds: 5,
		LogVerbosity:        0,
	}
}

// LoadSettings layers config.toml (if present) under env var overrides
// (prefixed RPOD_) on top of defaultSettings(), via viper.
func LoadSettings(configDir string) (Settings, error) {
	v := viper.New()
	settings := defaultSettings()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("RPOD")
	v.AutomaticEnv()
	v.SetDefault("poll_interval_seconds", settings.PollIntervalSeconds)
	v.SetDefault("log_verbosity", settings.LogVerbosity)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return settings, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(&settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// ResolveAPIKey returns the RunPod API key, checking in order: the
// RUNPOD_API_KEY environment variable, the on-disk credential file,
// then prompt, the interactive fallback a caller supplies. prompt is
// only invoked when neither of the first two produced a key, and its
// result is persisted to keyFile with mode 0600 on success.
func ResolveAPIKey(keyFile string, prompt func() (string, error)) (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}

	if exists, err := fsutil.IsFileExists(keyFile); err != nil {
		return "", err
	} else if exists {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", err
		}
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	key, err := prompt()
	if err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("no API key provided")
	}

	if err := fsutil.EnsureDir(filepath.Dir(keyFile)); err != nil {
		return "", err
	}
	if err := os.WriteFile(keyFile, []byte(key+"\n"), 0o600); err != nil {
		return "", err
	}

	return key, nil
}
