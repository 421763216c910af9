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

package schedule

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
)

// NewScheduleCommand builds the `schedule` parent command, grouping the
// read and cancel operations over deferred tasks the way `cluster`
// groups its own subcommands.
func NewScheduleCommand(app *appctx.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and cancel scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return err
			}
			return errors.New("subcommand is required")
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newCancelCommand(app))
	return cmd
}

func newListCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Scheduler.List()
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				app.Logger.V(0).Infof("No scheduled tasks.\n")
				return nil
			}

			table := cliutil.NewTable([]string{"ID", "ALIAS", "ACTION", "WHEN", "STATUS"})
			for _, t := range tasks {
				when := time.Unix(t.WhenEpoch, 0).Local().Format(time.RFC3339)
				table.Append([]string{t.ID, t.Alias, t.Action, when, string(t.Status)})
			}
			table.Render()
			return nil
		},
	}
}

func newCancelCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a pending scheduled task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.Scheduler.Cancel(args[0])
			if err != nil {
				return err
			}
			app.Logger.V(0).Infof("Cancelled task %s (%s %s)\n", task.ID, task.Action, task.Alias)
			return nil
		},
	}
}
