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
	"sort"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/store"
)

// TrackPod inserts alias pointing at podID without talking to the
// provider at all, for pods created outside rpod (e.g. from the
// provider's own console). force mirrors CreatePod's overwrite rule.
func (m *Manager) TrackPod(alias, podID string, force bool) error {
	doc, err := store.Load(m.dir)
	if err != nil {
		return err
	}
	if !doc.AddAlias(alias, podID, force) {
		return &apperr.AliasExistsError{Alias: alias}
	}
	return store.Save(m.dir, doc)
}

// UntrackPod removes alias from the store without touching the
// provider-side pod. If missingOK, an absent alias is a no-op rather
// than *apperr.AliasNotFoundError.
func (m *Manager) UntrackPod(alias string, missingOK bool) error {
	doc, err := store.Load(m.dir)
	if err != nil {
		return err
	}
	if _, ok := doc.RemoveAlias(alias); !ok {
		if missingOK {
			return nil
		}
		return aliasNotFound(doc, alias)
	}
	return store.Save(m.dir, doc)
}

// AliasNames returns every tracked alias, sorted, without any provider
// round trip. Used by the command layer for SSH-config reconciliation
// and table rendering that doesn't need live status.
func (m *Manager) AliasNames() ([]string, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return nil, err
	}
	names := doc.AliasNames()
	sort.Strings(names)
	return names, nil
}

// GetPodConfigPath is a narrow convenience over GetPodConfig for
// callers that only need the remote working directory, returning ""
// for an alias with no configured path.
func (m *Manager) GetPodConfigPath(alias string) (string, error) {
	cfg, err := m.GetPodConfig(alias)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", nil
	}
	return cfg.Path, nil
}
