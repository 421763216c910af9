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

package untrack

import (
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/logger"
)

// NewUntrackCommand builds `untrack <alias>`.
func NewUntrackCommand(app *appctx.App) *cobra.Command {
	var missingOK bool

	cmd := &cobra.Command{
		Use:   "untrack <alias>",
		Short: "Delete an alias without touching its pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			if err := app.Pods.UntrackPod(alias, missingOK); err != nil {
				return err
			}
			if _, err := app.SSH.Remove(alias); err != nil {
				app.Logger.Warnf("failed to remove ssh config block: %v\n", err)
			}
			app.Logger.V(0).Infof("Untracked %s\n", logger.Bold(alias))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOK, "missing-ok", false, "Do not error if the alias does not exist")
	return cmd
}
