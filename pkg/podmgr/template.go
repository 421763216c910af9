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
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/store"
)

// AddTemplate stores t under t.ID, failing soft unless force is set.
func (m *Manager) AddTemplate(t store.Template, force bool) error {
	doc, err := store.Load(m.dir)
	if err != nil {
		return err
	}
	if !doc.AddTemplate(t, force) {
		return &apperr.TemplateExistsError{ID: t.ID}
	}
	return store.Save(m.dir, doc)
}

// RemoveTemplate deletes id.
func (m *Manager) RemoveTemplate(id string, missingOK bool) error {
	doc, err := store.Load(m.dir)
	if err != nil {
		return err
	}
	if err := doc.RemoveTemplate(id, missingOK); err != nil {
		return err
	}
	return store.Save(m.dir, doc)
}

// ListTemplates returns every template sorted by id.
func (m *Manager) ListTemplates() ([]store.Template, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return nil, err
	}
	return doc.ListTemplates(), nil
}

// GetTemplate returns the template registered under id.
func (m *Manager) GetTemplate(id string) (store.Template, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return store.Template{}, err
	}
	return doc.GetTemplate(id)
}

// CreatePodFromTemplate resolves templateID, computes an alias (from
// aliasOverride, or the template's alias_template pattern plus the next
// free index), parses the template's gpu/storage/container-disk/image
// fields into a request, and delegates to CreatePod.
func (m *Manager) CreatePodFromTemplate(ctx context.Context, templateID string, force, dryRun bool, aliasOverride string) (View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return View{}, err
	}
	tmpl, err := doc.GetTemplate(templateID)
	if err != nil {
		return View{}, err
	}

	alias := aliasOverride
	if alias == "" {
		idx, err := doc.FindNextAliasIndex(tmpl.AliasTemplate)
		if err != nil {
			return View{}, err
		}
		alias = formatAliasTemplate(tmpl.AliasTemplate, idx)
	}

	return m.CreatePod(ctx, CreateRequest{
		Alias:             alias,
		GPUSpec:           tmpl.GPUSpec,
		StorageSpec:       tmpl.StorageSpec,
		ContainerDiskSpec: tmpl.ContainerDiskSpec,
		Image:             tmpl.Image,
		Force:             force,
		DryRun:            dryRun,
	})
}

// formatAliasTemplate mirrors store's unexported helper of the same
// name: it substitutes the literal "{i}" token in tmpl with i.
func formatAliasTemplate(tmpl string, i int) string {
	return strings.ReplaceAll(tmpl, "{i}", strconv.Itoa(i))
}

// DeriveTemplate fetches alias's live pod record and persists a new
// template under templateID, overwriting any template with that id. The
// image comes from the live record; the GPU spec and volume size come
// from the alias's stored creation-time PodSpec (falling back to
// "1xunknown" and "20GB" when none is stored), and the container-disk
// spec is set to the same value as the volume spec. The supplemented
// convenience constructor grounded on original's derive_template_from_pod.
func (m *Manager) DeriveTemplate(ctx context.Context, alias, templateID string) (store.Template, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return store.Template{}, err
	}
	podID, ok := doc.GetAllAliases()[alias]
	if !ok {
		return store.Template{}, aliasNotFound(doc, alias)
	}

	record, err := m.client.GetPod(ctx, podID)
	if err != nil {
		return store.Template{}, err
	}

	gpuSpec := "1xunknown"
	storageSpec := "20GB"
	if spec := doc.GetPodSpec(alias); spec != nil {
		if spec.GPU != "" {
			gpuSpec = spec.GPU
		}
		if spec.VolumeGB > 0 {
			storageSpec = fmt.Sprintf("%dGB", spec.VolumeGB)
		}
	}

	tmpl := store.Template{
		ID:                templateID,
		AliasTemplate:     alias + "-{i}",
		GPUSpec:           gpuSpec,
		StorageSpec:       storageSpec,
		ContainerDiskSpec: storageSpec,
		Image:             record.Image,
	}

	if !doc.AddTemplate(tmpl, true) {
		return store.Template{}, &apperr.TemplateExistsError{ID: templateID}
	}
	if err := store.Save(m.dir, doc); err != nil {
		return store.Template{}, err
	}
	return tmpl, nil
}
