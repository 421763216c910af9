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

package sshconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T) (*Editor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	return New(path), path
}

func TestUpsertAppendsToEmptyFile(t *testing.T) {
	e, path := newTestEditor(t)

	require.NoError(t, e.Upsert("foo", "p1", "1.2.3.4", 22001))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "Host foo\n"))
	require.Contains(t, text, MarkerPrefix+" alias=foo pod_id=p1")
	require.Contains(t, text, "    HostName 1.2.3.4\n")
	require.Contains(t, text, "    Port 22001\n")
	require.Contains(t, text, "    User root\n")
	require.Contains(t, text, "    IdentitiesOnly yes\n")
	require.Contains(t, text, "    IdentityFile ~/.ssh/runpod\n")
}

// TestUpsertTwiceIsIdempotent is spec property 3: two sequential upserts
// for the same alias leave exactly one managed stanza reflecting the
// second call's values.
func TestUpsertTwiceIsIdempotent(t *testing.T) {
	e, path := newTestEditor(t)

	require.NoError(t, e.Upsert("foo", "p1", "1.2.3.4", 22001))
	require.NoError(t, e.Upsert("foo", "p1", "5.6.7.8", 22002))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	require.Equal(t, 1, strings.Count(text, "Host foo\n"))
	require.Contains(t, text, "    HostName 5.6.7.8\n")
	require.Contains(t, text, "    Port 22002\n")
	require.NotContains(t, text, "1.2.3.4")
}

func TestUpsertPreservesUnmanagedContent(t *testing.T) {
	e, path := newTestEditor(t)
	initial := "Host jumpbox\n    HostName jump.example.com\n    User alice\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, e.Upsert("foo", "p1", "1.2.3.4", 22001))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), initial))
}

func TestRemoveOnlyDeletesManagedBlocks(t *testing.T) {
	e, path := newTestEditor(t)
	require.NoError(t, e.Upsert("foo", "p1", "1.2.3.4", 22001))

	// A hand-written, unmanaged stanza with the same host name.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	manual := string(data) + "\nHost foo\n    HostName manual.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(manual), 0o600))

	n, err := e.Remove("foo")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "manual.example.com")
	require.NotContains(t, string(data), MarkerPrefix)
}

// TestPruneRemovesOrphans is spec property 4 and end-to-end scenario 5's
// SSH half: prune removes exactly the managed blocks disjoint from the
// valid alias set.
func TestPruneRemovesOrphans(t *testing.T) {
	e, path := newTestEditor(t)
	require.NoError(t, e.Upsert("a", "pA", "1.1.1.1", 22001))
	require.NoError(t, e.Upsert("b", "pB", "2.2.2.2", 22002))
	require.NoError(t, e.Upsert("c", "pC", "3.3.3.3", 22003))

	n, err := e.Prune(map[string]struct{}{"a": {}})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "Host a\n")
	require.NotContains(t, text, "Host b\n")
	require.NotContains(t, text, "Host c\n")
}

func TestUpsertThenRemoveRestoresByteContent(t *testing.T) {
	e, path := newTestEditor(t)
	initial := "Host jumpbox\n    HostName jump.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, e.Upsert("foo", "p1", "1.2.3.4", 22001))
	_, err := e.Remove("foo")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.TrimRight(initial, "\n"), strings.TrimRight(string(data), "\n"))
}

func TestRemoveOnMissingFileIsNoop(t *testing.T) {
	e, _ := newTestEditor(t)
	n, err := e.Remove("foo")
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
