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

package stop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWhenIn(t *testing.T) {
	before := time.Now()
	when, err := resolveWhen("", "10m")
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(10*time.Minute), when, 2*time.Second)
}

func TestResolveWhenAt(t *testing.T) {
	when, err := resolveWhen("2030-01-02 15:04", "")
	require.NoError(t, err)
	assert.Equal(t, 2030, when.Year())
	assert.Equal(t, 15, when.Hour())
}

func TestResolveWhenBadDuration(t *testing.T) {
	_, err := resolveWhen("", "not-a-duration")
	assert.Error(t, err)
}
