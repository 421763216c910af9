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

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	doc, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, doc.GetAllAliases())
	require.Empty(t, doc.ListTemplates())
	require.Empty(t, doc.ScheduledTasks)
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PodsFile), []byte("{not json"), 0o600))

	doc, err := Load(dir)
	require.NoError(t, err)
	require.Empty(t, doc.GetAllAliases())
}

func TestAddAliasAndRemoveAlias(t *testing.T) {
	doc := Empty()

	require.True(t, doc.AddAlias("foo", "p1", false))
	require.Equal(t, map[string]string{"foo": "p1"}, doc.GetAllAliases())

	// Property 1: add then remove leaves the alias absent.
	id, ok := doc.RemoveAlias("foo")
	require.True(t, ok)
	require.Equal(t, "p1", id)
	require.NotContains(t, doc.GetAllAliases(), "foo")
}

func TestAddAliasFailsSoftWithoutForce(t *testing.T) {
	doc := Empty()
	require.True(t, doc.AddAlias("foo", "p1", false))
	require.False(t, doc.AddAlias("foo", "p2", false))
	require.Equal(t, "p1", doc.GetAllAliases()["foo"])

	require.True(t, doc.AddAlias("foo", "p2", true))
	require.Equal(t, "p2", doc.GetAllAliases()["foo"])
}

func TestFindNextAliasIndex(t *testing.T) {
	doc := Empty()
	doc.AddAlias("h-1", "a", false)
	doc.AddAlias("h-3", "c", false)

	// Property 2: minimal free index.
	n, err := doc.FindNextAliasIndex("h-{i}")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	doc.AddAlias("h-2", "b", false)
	n, err = doc.FindNextAliasIndex("h-{i}")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestFindNextAliasIndexRequiresToken(t *testing.T) {
	doc := Empty()
	_, err := doc.FindNextAliasIndex("h-static")
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := Empty()
	doc.AddAlias("foo", "p1", false)
	doc.AddTemplate(Template{ID: "h", AliasTemplate: "h-{i}", GPUSpec: "1xH100", StorageSpec: "500GB"}, false)
	require.NoError(t, doc.SetPodConfig("foo", "path", "/workspace"))

	require.NoError(t, Save(dir, doc))

	first, err := os.ReadFile(filepath.Join(dir, PodsFile))
	require.NoError(t, err)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, doc.GetAllAliases(), reloaded.GetAllAliases())
	require.Equal(t, doc.ListTemplates(), reloaded.ListTemplates())

	require.NoError(t, Save(dir, reloaded))
	second, err := os.ReadFile(filepath.Join(dir, PodsFile))
	require.NoError(t, err)
	require.Equal(t, first, second, "load->save->load must be byte-identical")
}

func TestUnknownKeysPreservedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	raw := `{"aliases":{"foo":"p1"},"future_field":{"nested":true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, PodsFile), []byte(raw), 0o600))

	doc, err := Load(dir)
	require.NoError(t, err)
	require.Contains(t, doc.Extra, "future_field")

	require.NoError(t, Save(dir, doc))
	data, err := os.ReadFile(filepath.Join(dir, PodsFile))
	require.NoError(t, err)
	require.Contains(t, string(data), `"future_field"`)
	require.Contains(t, string(data), `"nested": true`)
}

// TestLegacyMigration covers a flat legacy document gaining a promoted
// alias without disturbing its sibling.
func TestLegacyMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PodsFile), []byte(`{"foo":"p1","bar":"p2"}`), 0o600))

	doc, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"foo": "p1", "bar": "p2"}, doc.GetAllAliases())
	require.Empty(t, doc.ListTemplates())
	require.Empty(t, doc.ScheduledTasks)

	require.NoError(t, doc.SetPodConfig("foo", "path", "/ws"))
	require.NoError(t, Save(dir, doc))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"foo": "p1", "bar": "p2"}, reloaded.GetAllAliases())
	require.Equal(t, "bar", func() string {
		for name := range reloaded.Aliases {
			return name
		}
		return ""
	}())
	cfg, err := reloaded.GetPodConfig("foo")
	require.NoError(t, err)
	require.Equal(t, "/ws", cfg.Path)
}

func TestLegacyScheduleFileReadCompat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PodsFile), []byte(`{"aliases":{"x":"p1"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyScheduleFile), []byte(`[{"id":"t1","action":"stop","alias":"x","when_epoch":100,"status":"PENDING","created_at":"2024-01-01T00:00:00Z"}]`), 0o600))

	doc, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, doc.ScheduledTasks, 1)
	require.Equal(t, "t1", doc.ScheduledTasks[0].ID)

	// Once saved, tasks live in pods.json; schedule.json is left as-is
	// but no longer consulted because ScheduledTasks is now non-empty.
	require.NoError(t, Save(dir, doc))
	data, err := os.ReadFile(filepath.Join(dir, PodsFile))
	require.NoError(t, err)
	require.Contains(t, string(data), `"scheduled_tasks"`)
}
