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

package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
	"github.com/gpupodctl/rpod/pkg/logger"
)

// NewListCommand builds `list`.
func NewListCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := app.Pods.ListPods(cmd.Context())
			if err != nil {
				return err
			}

			if len(views) == 0 {
				app.Logger.V(0).Infof("No aliases tracked.\n")
				return nil
			}

			table := cliutil.NewTable([]string{"ALIAS", "POD ID", "STATUS", "GPU", "COST/HR", "IMAGE"})
			for _, v := range views {
				cost := "-"
				if v.CostPerHour != nil {
					cost = fmt.Sprintf("$%.3f", *v.CostPerHour)
				}
				gpu := v.GPU
				if gpu == "" {
					gpu = "-"
				}
				table.Append([]string{v.Alias, v.PodID, logger.StatusColor(string(v.Status)), gpu, cost, v.Image})
			}
			table.Render()
			return nil
		},
	}
}
