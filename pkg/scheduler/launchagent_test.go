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

package scheduler

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

func TestInstallAgentNoopOffDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("this case only exercises the non-Darwin no-op path")
	}

	err := InstallAgent(AgentConfig{ProgramArguments: []string{"rpod", "scheduler-tick"}})
	var unsupported *apperr.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestRenderPlistContainsExpectedFields(t *testing.T) {
	out := string(renderPlist(AgentConfig{
		ProgramArguments: []string{"/usr/bin/rpod", "scheduler-tick"},
		EnvironmentVars:  map[string]string{"PATH": "/usr/bin"},
		LogFile:          "/tmp/rpod.log",
	}))
	require.Contains(t, out, "com.rpod.scheduler")
	require.Contains(t, out, "<integer>60</integer>")
	require.Contains(t, out, "scheduler-tick")
	require.Contains(t, out, "/tmp/rpod.log")
}
