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

package cursor

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
)

// NewCursorCommand builds `cursor <alias> [path]`: opens a
// vscode-remote URI against the alias's SSH host, falling back to the
// alias's configured path when none is given on the command line.
func NewCursorCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "cursor <alias> [path]",
		Short: "Launch an editor connected to a pod over SSH",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			path := ""
			if len(args) == 2 {
				path = args[1]
			} else if cfg, err := app.Pods.GetPodConfig(alias); err == nil && cfg != nil {
				path = cfg.Path
			}

			uri := fmt.Sprintf("vscode-remote://ssh-remote+%s%s", alias, path)
			app.Logger.V(0).Infof("Opening %s\n", uri)
			return openURI(uri)
		},
	}
}

func openURI(uri string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "start"
	default:
		name = "xdg-open"
	}
	return exec.Command(name, uri).Run()
}
