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

package shell

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
)

// NewShellCommand builds `shell <alias>`: execs ssh with agent
// forwarding, changing into the alias's configured path first when one
// is set, mirroring the exec-and-stream pattern used for remote setup
// scripts.
func NewShellCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell <alias>",
		Short: "Open an interactive shell on a pod over SSH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			sshArgs := []string{"-A", alias}
			if cfg, err := app.Pods.GetPodConfig(alias); err == nil && cfg != nil && cfg.Path != "" {
				sshArgs = append(sshArgs, fmt.Sprintf("cd %s && exec $SHELL -l", cfg.Path))
			}

			c := exec.Command("ssh", sshArgs...)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			c.Stdin = os.Stdin
			return c.Run()
		},
	}
}
