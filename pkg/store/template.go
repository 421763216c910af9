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
	"strconv"
	"strings"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

const indexToken = "{i}"

func containsIndexToken(tmpl string) bool {
	return strings.Contains(tmpl, indexToken)
}

func formatAliasTemplate(tmpl string, i int) string {
	return strings.ReplaceAll(tmpl, indexToken, strconv.Itoa(i))
}

// AddTemplate stores t under t.ID. Fails soft (returns false) if the id
// exists and force is false.
func (d *Document) AddTemplate(t Template, force bool) bool {
	if _, exists := d.PodTemplates[t.ID]; exists && !force {
		return false
	}
	if d.PodTemplates == nil {
		d.PodTemplates = map[string]Template{}
	}
	d.PodTemplates[t.ID] = t
	return true
}

// RemoveTemplate deletes id, returning apperr.TemplateNotFoundError if
// it was not tracked and missingOK is false.
func (d *Document) RemoveTemplate(id string, missingOK bool) error {
	if _, exists := d.PodTemplates[id]; !exists {
		if missingOK {
			return nil
		}
		return &apperr.TemplateNotFoundError{ID: id}
	}
	delete(d.PodTemplates, id)
	return nil
}

// GetTemplate returns the template registered under id.
func (d *Document) GetTemplate(id string) (Template, error) {
	t, ok := d.PodTemplates[id]
	if !ok {
		return Template{}, &apperr.TemplateNotFoundError{ID: id}
	}
	return t, nil
}

// ListTemplates returns every template sorted by id.
func (d *Document) ListTemplates() []Template {
	out := make([]Template, 0, len(d.PodTemplates))
	for _, t := range d.PodTemplates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
