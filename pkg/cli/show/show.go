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

package show

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/scheduler"
)

// unknown is the fallback rpod prints for a show field it has no value
// for, matching original's dim "(unknown)" placeholders.
const unknown = "(unknown)"

// NewShowCommand builds `show <alias>`.
func NewShowCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <alias>",
		Short: "Show a detailed view of an alias and its pending tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			view, err := app.Pods.GetPod(cmd.Context(), alias)
			if err != nil {
				return err
			}

			l := app.Logger
			l.V(0).Infof("%s\n", logger.Bold(alias))
			l.V(0).Infof("  pod id:  %s\n", view.PodID)
			l.V(0).Infof("  status:  %s\n", logger.StatusColor(string(view.Status)))
			if view.GPU != "" {
				l.V(0).Infof("  gpu:     %s\n", view.GPU)
			} else {
				l.V(0).Infof("  gpu:     %s\n", unknown)
			}
			if view.VolumeGB > 0 {
				l.V(0).Infof("  volume:  %dGB\n", view.VolumeGB)
			} else {
				l.V(0).Infof("  volume:  %s\n", unknown)
			}
			if view.CostPerHour != nil {
				l.V(0).Infof("  cost:    $%.3f/hour\n", *view.CostPerHour)
			} else {
				l.V(0).Infof("  cost:    %s\n", unknown)
			}
			if view.Image != "" {
				l.V(0).Infof("  image:   %s\n", view.Image)
			}
			if view.IP != "" {
				l.V(0).Infof("  address: %s:%d\n", view.IP, view.Port)
			}

			if cfg, err := app.Pods.GetPodConfig(alias); err == nil && cfg != nil && cfg.Path != "" {
				l.V(0).Infof("  path:    %s\n", cfg.Path)
			}

			tasks, err := app.Scheduler.List()
			if err != nil {
				return err
			}
			var pending int
			for _, t := range tasks {
				if t.Alias != alias || t.Status != scheduler.TaskPending {
					continue
				}
				pending++
				when := time.Unix(t.WhenEpoch, 0).Local().Format(time.RFC3339)
				l.V(0).Infof("  pending task %s: %s at %s\n", t.ID, t.Action, when)
			}
			if pending == 0 {
				l.V(0).Infof("  no pending tasks\n")
			}

			return nil
		},
	}
}
