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

package track

import (
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/logger"
)

// NewTrackCommand builds `track <alias> <pod-id>`.
func NewTrackCommand(app *appctx.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "track <alias> <pod-id>",
		Short: "Insert an alias pointing at an externally created pod",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, podID := args[0], args[1]
			if err := app.Pods.TrackPod(alias, podID, force); err != nil {
				return err
			}
			app.Logger.V(0).Infof("Tracking %s -> pod %s\n", logger.Bold(alias), podID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing alias")
	return cmd
}
