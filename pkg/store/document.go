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

// Package store owns the single JSON document rpod persists aliases,
// templates, and scheduled tasks into. It accepts two historical
// shapes on read (a flat legacy alias map, or a tagged modern document)
// and always writes the modern shape, atomically, with unknown keys
// preserved round-trip.
package store

import (
	"encoding/json"
)

// AliasConfig is the optional per-alias configuration that promotes an
// entry from the flat legacy map into PodMetadata.
type AliasConfig struct {
	Path string `json:"path,omitempty"`
}

// AliasMetadata is the modern, richer record for a tracked pod.
type AliasMetadata struct {
	PodID  string       `json:"pod_id"`
	Config *AliasConfig `json:"config,omitempty"`
	Spec   *PodSpec     `json:"spec,omitempty"`
}

// PodSpec is the creation-time GPU and volume request for a pod,
// captured once at CreatePod and re-read on every later GetPod/ListPods,
// since the provider's own pod-status response never echoes either
// back (only cost-per-hour round-trips live). A TrackPod'd alias has no
// PodSpec, since it was never created through rpod.
type PodSpec struct {
	GPU      string `json:"gpu,omitempty"`
	VolumeGB int    `json:"volume_gb,omitempty"`
}

// Template is a reusable bundle of creation parameters plus an
// auto-indexing alias pattern.
type Template struct {
	ID                string `json:"id"`
	AliasTemplate     string `json:"alias_template"`
	GPUSpec           string `json:"gpu_spec"`
	StorageSpec       string `json:"storage_spec"`
	ContainerDiskSpec string `json:"container_disk_spec,omitempty"`
	Image             string `json:"image,omitempty"`
}

// Document is the full on-disk shape. Aliases is the legacy flat
// alias->pod-id map, still read and written for entries that were never
// promoted; PodMetadata holds the richer modern records. Extra carries
// any top-level key this version of rpod does not recognize, so a
// document written by a newer or older build round-trips unchanged.
type Document struct {
	Aliases        map[string]string        `json:"-"`
	PodMetadata    map[string]AliasMetadata `json:"-"`
	PodTemplates   map[string]Template      `json:"-"`
	ScheduledTasks []Task                   `json:"-"`
	Extra          map[string]json.RawMessage `json:"-"`
}

const (
	keyAliases        = "aliases"
	keyPodMetadata    = "pod_metadata"
	keyPodTemplates   = "pod_templates"
	keyScheduledTasks = "scheduled_tasks"
)

var modernKeys = [...]string{keyAliases, keyPodMetadata, keyPodTemplates, keyScheduledTasks}

// Empty returns a fresh, modern, empty document.
func Empty() *Document {
	return &Document{}
}

// isModern reports whether raw carries any of the keys that only appear
// in the tagged modern schema.
func isModern(raw map[string]json.RawMessage) bool {
	for _, k := range modernKeys {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}

// parseDocument decodes data as either the legacy flat alias map or the
// modern tagged document. It returns an error only when data is not
// valid JSON at all; callers treat that as "empty document", matching
// the store's never-fail-on-load contract.
func parseDocument(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	doc := Empty()

	if !isModern(raw) {
		legacy := map[string]string{}
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, err
		}
		doc.Aliases = legacy
		return doc, nil
	}

	if v, ok := raw[keyAliases]; ok {
		if err := json.Unmarshal(v, &doc.Aliases); err == nil {
			delete(raw, keyAliases)
		}
	}
	if v, ok := raw[keyPodMetadata]; ok {
		if err := json.Unmarshal(v, &doc.PodMetadata); err == nil {
			delete(raw, keyPodMetadata)
		}
	}
	if v, ok := raw[keyPodTemplates]; ok {
		if err := json.Unmarshal(v, &doc.PodTemplates); err == nil {
			delete(raw, keyPodTemplates)
		}
	}
	if v, ok := raw[keyScheduledTasks]; ok {
		if err := json.Unmarshal(v, &doc.ScheduledTasks); err == nil {
			delete(raw, keyScheduledTasks)
		}
	}

	if len(raw) > 0 {
		doc.Extra = raw
	}

	return doc, nil
}

// encode renders the document as sorted-key, indented JSON with a
// trailing newline, the shape original's save_pod_configs produces via
// json.dump(..., indent=2, sort_keys=True).
func (d *Document) encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Extra)+4)
	for k, v := range d.Extra {
		out[k] = v
	}

	marshalInto := func(key string, empty bool, v interface{}) error {
		if empty {
			return nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}

	if err := marshalInto(keyAliases, len(d.Aliases) == 0, d.Aliases); err != nil {
		return nil, err
	}
	if err := marshalInto(keyPodMetadata, len(d.PodMetadata) == 0, d.PodMetadata); err != nil {
		return nil, err
	}
	if err := marshalInto(keyPodTemplates, len(d.PodTemplates) == 0, d.PodTemplates); err != nil {
		return nil, err
	}
	if err := marshalInto(keyScheduledTasks, len(d.ScheduledTasks) == 0, d.ScheduledTasks); err != nil {
		return nil, err
	}

	// json.MarshalIndent on a map[string]json.RawMessage sorts keys
	// lexically and re-indents the pre-marshaled values, giving us
	// diff-friendly output without hand-rolling a key sort.
	indented, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(indented, '\n'), nil
}
