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

package destroy

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
	"github.com/gpupodctl/rpod/pkg/logger"
)

// NewDestroyCommand builds `destroy <alias>`.
func NewDestroyCommand(app *appctx.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy <alias>",
		Short: "Terminate a pod and remove its alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			if !force && !cliutil.Confirm(fmt.Sprintf("Destroy %s? This terminates the pod permanently.", alias)) {
				app.Logger.V(0).Infof("Canceled.\n")
				return nil
			}

			ctx := cmd.Context()
			podID, err := app.Pods.DestroyPod(ctx, alias)
			if err != nil {
				return err
			}
			app.Logger.V(0).Infof("Destroyed %s (pod %s)\n", logger.Bold(alias), podID)

			if _, err := app.SSH.Remove(alias); err != nil {
				app.Logger.Warnf("failed to remove ssh config block: %v\n", err)
			}

			app.Housekeeping(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
