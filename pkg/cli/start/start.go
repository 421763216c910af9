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

package start

import (
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/podmgr"
	"github.com/gpupodctl/rpod/pkg/status"
)

// NewStartCommand builds `start <alias>`.
func NewStartCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <alias>",
		Short: "Start a stopped pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			ctx := cmd.Context()

			var view podmgr.View
			err := status.RunAliasStep("Starting", alias, func() error {
				var err error
				view, err = app.Pods.StartPod(ctx, alias)
				return err
			})
			if err != nil {
				return err
			}

			app.Logger.V(0).Infof("Pod %s is %s\n", logger.Bold(alias), view.Status)

			if view.IP != "" && view.Port != 0 {
				if err := app.SSH.Upsert(alias, view.PodID, view.IP, view.Port); err != nil {
					app.Logger.Warnf("failed to update ssh config: %v\n", err)
				}
				if err := cliutil.RunRemoteSetup(app.Paths.RemoteSetup, alias, app.Logger); err != nil {
					app.Logger.Warnf("remote setup failed: %v\n", err)
				}
			}

			app.Housekeeping(ctx)
			return nil
		},
	}
}
