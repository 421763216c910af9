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

package clean

import (
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
)

// NewCleanCommand builds `clean`: drop INVALID aliases, prune SSH
// blocks with no matching alias, and clean terminal scheduled tasks.
// Unlike the silent housekeeping every mutating command runs, this one
// reports what it did.
func NewCleanCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Reconcile aliases, SSH config, and scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			removedAliases, err := app.Pods.CleanInvalidAliases(ctx)
			if err != nil {
				return err
			}

			names, err := app.Pods.AliasNames()
			if err != nil {
				return err
			}
			valid := make(map[string]struct{}, len(names))
			for _, name := range names {
				valid[name] = struct{}{}
			}
			prunedBlocks, err := app.SSH.Prune(valid)
			if err != nil {
				return err
			}

			removedTasks, err := app.Scheduler.CleanCompleted()
			if err != nil {
				return err
			}

			app.Logger.V(0).Infof("Removed %d invalid alias(es), pruned %d ssh block(s), cleaned %d terminal task(s)\n",
				removedAliases, prunedBlocks, removedTasks)
			return nil
		},
	}
}
