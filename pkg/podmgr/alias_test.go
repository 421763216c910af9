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

package podmgr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

func TestTrackAndUntrackPod(t *testing.T) {
	dir := t.TempDir()
	mgr := New(dir, newFakeClient())

	require.NoError(t, mgr.TrackPod("ext", "p-ext", false))

	err := mgr.TrackPod("ext", "p-other", false)
	var existsErr *apperr.AliasExistsError
	require.ErrorAs(t, err, &existsErr)

	require.NoError(t, mgr.TrackPod("ext", "p-other", true))

	names, err := mgr.AliasNames()
	require.NoError(t, err)
	require.Equal(t, []string{"ext"}, names)

	require.NoError(t, mgr.UntrackPod("ext", false))

	names, err = mgr.AliasNames()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestUntrackPodMissing(t *testing.T) {
	dir := t.TempDir()
	mgr := New(dir, newFakeClient())

	err := mgr.UntrackPod("ghost", false)
	var notFound *apperr.AliasNotFoundError
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, mgr.UntrackPod("ghost", true))
}

func TestGetPodConfigPath(t *testing.T) {
	dir := t.TempDir()
	mgr := New(dir, newFakeClient())
	require.NoError(t, mgr.TrackPod("box", "p1", false))

	path, err := mgr.GetPodConfigPath("box")
	require.NoError(t, err)
	require.Empty(t, path)

	require.NoError(t, mgr.SetPodConfig("box", "path", "/workspace"))

	path, err = mgr.GetPodConfigPath("box")
	require.NoError(t, err)
	require.Equal(t, "/workspace", path)
}
