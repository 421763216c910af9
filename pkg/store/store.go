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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/fsutil"
)

const (
	// PodsFile is the canonical store document name.
	PodsFile = "pods.json"
	// LegacyScheduleFile is a historical variant that kept scheduled
	// tasks in their own file. rpod reads it for compatibility but
	// never writes it again once a document has been saved.
	LegacyScheduleFile = "schedule.json"
)

// Load reads the store document from dir/pods.json. A missing or
// corrupt file is never an error: Load returns an empty document
// instead, so a fresh install or a damaged file never blocks startup.
// Real I/O errors (permission denied, not-a-directory, ...) propagate
// as *apperr.IOError.
func Load(dir string) (*Document, error) {
	path := filepath.Join(dir, PodsFile)

	doc, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if len(doc.ScheduledTasks) == 0 {
		if legacy, ok, err := loadLegacySchedule(dir); err != nil {
			return nil, err
		} else if ok {
			doc.ScheduledTasks = legacy
		}
	}

	return doc, nil
}

func loadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, &apperr.IOError{Path: path, Err: err}
	}

	doc, err := parseDocument(data)
	if err != nil {
		// Malformed JSON is treated as an empty document rather than a
		// fatal error, so a hand-edited file never blocks the CLI.
		return Empty(), nil
	}

	return doc, nil
}

func loadLegacySchedule(dir string) ([]Task, bool, error) {
	path := filepath.Join(dir, LegacyScheduleFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &apperr.IOError{Path: path, Err: err}
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, false, nil
	}

	return tasks, len(tasks) > 0, nil
}

// Save atomically overwrites dir/pods.json with doc's modern-shape
// encoding: write a sibling temp file, fsync, rename over the target.
// schedule.json is never written by Save; once a document round-trips
// through here its tasks live exclusively in pods.json.
func Save(dir string, doc *Document) error {
	data, err := doc.encode()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, PodsFile)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return &apperr.IOError{Path: path, Err: err}
	}

	return nil
}
