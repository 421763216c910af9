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
	"time"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/scheduler"
)

// NewStopCommand builds `stop <alias>`.
func NewStopCommand(app *appctx.App) *cobra.Command {
	var (
		at     string
		in     string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "stop <alias>",
		Short: "Stop a pod now, or schedule it to stop later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			if at != "" && in != "" {
				return &apperr.SchedulingConflictError{Flags: []string{"--at", "--in"}}
			}

			if at == "" && in == "" {
				return stopNow(cmd, app, alias, dryRun)
			}
			return scheduleStop(app, alias, at, in, dryRun)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Stop at an absolute time instead of immediately")
	cmd.Flags().StringVar(&in, "in", "", "Stop after a duration instead of immediately")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without doing it")

	return cmd
}

func stopNow(cmd *cobra.Command, app *appctx.App, alias string, dryRun bool) error {
	if dryRun {
		app.Logger.V(0).Infof("Would stop %s now\n", logger.Bold(alias))
		return nil
	}

	ctx := cmd.Context()
	view, err := app.Pods.StopPod(ctx, alias)
	if err != nil {
		return err
	}
	app.Logger.V(0).Infof("Pod %s is %s\n", logger.Bold(alias), view.Status)

	if _, err := app.SSH.Remove(alias); err != nil {
		app.Logger.Warnf("failed to remove ssh config block: %v\n", err)
	}

	app.Housekeeping(ctx)
	return nil
}

func scheduleStop(app *appctx.App, alias, at, in string, dryRun bool) error {
	when, err := resolveWhen(at, in)
	if err != nil {
		return err
	}

	if dryRun {
		app.Logger.V(0).Infof("Would schedule stop of %s at %s\n", logger.Bold(alias), when.Format(time.RFC3339))
		return nil
	}

	task, err := app.Scheduler.ScheduleStop(alias, when)
	if err != nil {
		return err
	}
	app.Logger.V(0).Infof("Scheduled task %s: stop %s at %s\n", task.ID, logger.Bold(alias), when.Format(time.RFC3339))
	return nil
}

func resolveWhen(at, in string) (time.Time, error) {
	if in != "" {
		d, err := scheduler.ParseDuration(in)
		if err != nil {
			return time.Time{}, err
		}
		return time.Now().Add(d), nil
	}
	return scheduler.ParseTime(at, time.Now())
}
