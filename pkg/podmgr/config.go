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

import "github.com/gpupodctl/rpod/pkg/store"

// GetPodConfig returns alias's per-pod configuration, delegating
// straight to the store.
func (m *Manager) GetPodConfig(alias string) (*store.AliasConfig, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return nil, err
	}
	return doc.GetPodConfig(alias)
}

// SetPodConfig sets key=value on alias's configuration.
func (m *Manager) SetPodConfig(alias, key, value string) error {
	doc, err := store.Load(m.dir)
	if err != nil {
		return err
	}
	if err := doc.SetPodConfig(alias, key, value); err != nil {
		return err
	}
	return store.Save(m.dir, doc)
}
