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

package cliutil

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/gpupodctl/rpod/pkg/fsutil"
	"github.com/gpupodctl/rpod/pkg/logger"
)

const remoteSetupPath = "/tmp/setup_pod.sh"

// RunLocalSetup runs localSetupFile (if present) through "bash -lc",
// grounded on original's _run_setup_scripts. A missing file is not an
// error; it's simply skipped.
func RunLocalSetup(localSetupFile string, l logger.Logger) error {
	exists, err := fsutil.IsFileExists(localSetupFile)
	if err != nil || !exists {
		return err
	}
	script, err := os.ReadFile(localSetupFile)
	if err != nil {
		return err
	}
	l.V(0).Infof("Running local setup script...")
	return runStreamed(exec.Command("bash", "-lc", string(script)))
}

// RunRemoteSetup copies remoteSetupFile to alias over scp, makes it
// executable, and runs it over ssh, mirroring original's scp-then-ssh
// three step sequence.
func RunRemoteSetup(remoteSetupFile, alias string, l logger.Logger) error {
	exists, err := fsutil.IsFileExists(remoteSetupFile)
	if err != nil || !exists {
		return err
	}

	l.V(0).Infof("Copying remote setup script to %s...", alias)
	dest := fmt.Sprintf("%s:%s", alias, remoteSetupPath)
	if err := runStreamed(exec.Command("scp", "-o", "StrictHostKeyChecking=no", remoteSetupFile, dest)); err != nil {
		return err
	}

	l.V(0).Infof("Making remote setup script executable...")
	if err := runStreamed(exec.Command("ssh", alias, "chmod +x "+remoteSetupPath)); err != nil {
		return err
	}

	l.V(0).Infof("Running remote setup script on %s...", alias)
	return runStreamed(exec.Command("ssh", alias, remoteSetupPath))
}

func runStreamed(cmd *exec.Cmd) error {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
