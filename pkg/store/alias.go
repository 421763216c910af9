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
	"sort"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

// lookupAlias returns the pod-id for name, checking the modern metadata
// map first and falling back to the legacy flat map.
func (d *Document) lookupAlias(name string) (string, bool) {
	if meta, ok := d.PodMetadata[name]; ok {
		return meta.PodID, true
	}
	if id, ok := d.Aliases[name]; ok {
		return id, true
	}
	return "", false
}

// AliasNames returns every tracked alias, legacy and modern, unsorted.
func (d *Document) AliasNames() []string {
	names := make([]string, 0, len(d.Aliases)+len(d.PodMetadata))
	for name := range d.Aliases {
		names = append(names, name)
	}
	for name := range d.PodMetadata {
		names = append(names, name)
	}
	return names
}

// GetAllAliases returns a name->pod-id snapshot combining the legacy
// flat map and the modern per-alias metadata.
func (d *Document) GetAllAliases() map[string]string {
	out := make(map[string]string, len(d.Aliases)+len(d.PodMetadata))
	for name, id := range d.Aliases {
		out[name] = id
	}
	for name, meta := range d.PodMetadata {
		out[name] = meta.PodID
	}
	return out
}

// AddAlias records name->podID. If name already exists and force is
// false, it fails soft and returns false without mutating anything. An
// alias already promoted into PodMetadata keeps its config and is
// updated there; a brand new alias is written to the flat legacy map,
// matching the shape original's save_pod_configs always wrote.
func (d *Document) AddAlias(name, podID string, force bool) bool {
	if _, exists := d.lookupAlias(name); exists && !force {
		return false
	}

	if meta, ok := d.PodMetadata[name]; ok {
		meta.PodID = podID
		d.PodMetadata[name] = meta
		return true
	}

	if d.Aliases == nil {
		d.Aliases = map[string]string{}
	}
	d.Aliases[name] = podID
	return true
}

// RemoveAlias deletes name from whichever map holds it and returns its
// last known pod-id, or ("", false) if it was not tracked.
func (d *Document) RemoveAlias(name string) (string, bool) {
	if meta, ok := d.PodMetadata[name]; ok {
		delete(d.PodMetadata, name)
		return meta.PodID, true
	}
	if id, ok := d.Aliases[name]; ok {
		delete(d.Aliases, name)
		return id, true
	}
	return "", false
}

// FindNextAliasIndex returns the smallest positive integer i such that
// formatting tmpl with i is not a currently tracked alias. tmpl must
// contain the literal token "{i}".
func (d *Document) FindNextAliasIndex(tmpl string) (int, error) {
	if !containsIndexToken(tmpl) {
		return 0, &apperr.BadSpecError{Field: "alias_template", Input: tmpl, Reason: "must contain {i}"}
	}

	existing := d.GetAllAliases()
	for i := 1; ; i++ {
		candidate := formatAliasTemplate(tmpl, i)
		if _, taken := existing[candidate]; !taken {
			return i, nil
		}
	}
}

// GetPodConfig returns the per-alias config for alias, or nil if none
// is set. The alias must exist.
func (d *Document) GetPodConfig(alias string) (*AliasConfig, error) {
	if _, ok := d.lookupAlias(alias); !ok {
		return nil, &apperr.AliasNotFoundError{Alias: alias, Candidates: sortedNames(d.AliasNames())}
	}
	if meta, ok := d.PodMetadata[alias]; ok {
		return meta.Config, nil
	}
	return nil, nil
}

// SetPodConfig sets key=value on alias's configuration, promoting the
// alias from the flat legacy map into PodMetadata on first use.
func (d *Document) SetPodConfig(alias, key, value string) error {
	podID, ok := d.lookupAlias(alias)
	if !ok {
		return &apperr.AliasNotFoundError{Alias: alias, Candidates: sortedNames(d.AliasNames())}
	}

	if key != "path" {
		return &apperr.BadSpecError{Field: "config key", Input: key, Reason: "supported keys: path"}
	}

	meta, promoted := d.PodMetadata[alias]
	if !promoted {
		meta = AliasMetadata{PodID: podID}
		delete(d.Aliases, alias)
	}
	if meta.Config == nil {
		meta.Config = &AliasConfig{}
	}
	meta.Config.Path = value

	if d.PodMetadata == nil {
		d.PodMetadata = map[string]AliasMetadata{}
	}
	d.PodMetadata[alias] = meta

	return nil
}

// SetPodSpec records alias's creation-time GPU/volume spec, promoting
// it into PodMetadata like SetPodConfig does. Called once by CreatePod
// right after AddAlias; never exposed as a user-facing config key.
func (d *Document) SetPodSpec(alias string, spec PodSpec) {
	meta, promoted := d.PodMetadata[alias]
	if !promoted {
		podID, _ := d.lookupAlias(alias)
		meta = AliasMetadata{PodID: podID}
		delete(d.Aliases, alias)
	}
	meta.Spec = &spec
	if d.PodMetadata == nil {
		d.PodMetadata = map[string]AliasMetadata{}
	}
	d.PodMetadata[alias] = meta
}

// GetPodSpec returns alias's creation-time spec, or nil if it was
// tracked from outside rpod or created before this field existed.
func (d *Document) GetPodSpec(alias string) *PodSpec {
	if meta, ok := d.PodMetadata[alias]; ok {
		return meta.Spec
	}
	return nil
}

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}
