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

// Package namegen generates human-readable alias names for `create`
// invocations that omit one, using the adjective-noun generator the
// teacher's go.mod already depended on but never called.
package namegen

import (
	"fmt"

	"github.com/lucasepe/codename"
)

// Generate returns a fresh "adjective-noun" name, e.g. "purple-falcon".
// taken reports whether a candidate name is already in use; Generate
// retries until it produces a free one.
func Generate(taken func(name string) bool) (string, error) {
	rng, err := codename.DefaultRNG()
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < 100; attempt++ {
		name := codename.Generate(rng, 0)
		if !taken(name) {
			return name, nil
		}
	}

	return "", fmt.Errorf("namegen: could not find a free name after 100 attempts")
}
