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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAPIKeyFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	key, err := ResolveAPIKey(filepath.Join(t.TempDir(), "runpod_api_key"), func() (string, error) {
		t.Fatal("prompt should not be called when env var is set")
		return "", nil
	})
	require.NoError(t, err)
	require.Equal(t, "env-key", key)
}

func TestResolveAPIKeyFromFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "runpod_api_key")
	require.NoError(t, os.WriteFile(keyFile, []byte("file-key\n"), 0o600))

	key, err := ResolveAPIKey(keyFile, func() (string, error) {
		t.Fatal("prompt should not be called when key file exists")
		return "", nil
	})
	require.NoError(t, err)
	require.Equal(t, "file-key", key)
}

func TestResolveAPIKeyPromptsAndPersists(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "nested", "runpod_api_key")

	key, err := ResolveAPIKey(keyFile, func() (string, error) { return "prompted-key", nil })
	require.NoError(t, err)
	require.Equal(t, "prompted-key", key)

	data, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	require.Equal(t, "prompted-key\n", string(data))

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 5, settings.PollIntervalSeconds)
	require.Equal(t, 0, settings.LogVerbosity)
}

func TestLoadSettingsFromTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("poll_interval_seconds = 10\nlog_verbosity = 2\n"), 0o600))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	require.Equal(t, 10, settings.PollIntervalSeconds)
	require.Equal(t, 2, settings.LogVerbosity)
}
