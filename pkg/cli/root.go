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

// Package cli assembles the rpod command tree: one subpackage per verb,
// each built against a single shared appctx.App.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/clean"
	"github.com/gpupodctl/rpod/pkg/cli/config"
	"github.com/gpupodctl/rpod/pkg/cli/create"
	"github.com/gpupodctl/rpod/pkg/cli/cursor"
	"github.com/gpupodctl/rpod/pkg/cli/destroy"
	"github.com/gpupodctl/rpod/pkg/cli/list"
	"github.com/gpupodctl/rpod/pkg/cli/schedule"
	"github.com/gpupodctl/rpod/pkg/cli/schedulertick"
	"github.com/gpupodctl/rpod/pkg/cli/shell"
	"github.com/gpupodctl/rpod/pkg/cli/show"
	"github.com/gpupodctl/rpod/pkg/cli/start"
	"github.com/gpupodctl/rpod/pkg/cli/stop"
	"github.com/gpupodctl/rpod/pkg/cli/template"
	"github.com/gpupodctl/rpod/pkg/cli/track"
	"github.com/gpupodctl/rpod/pkg/cli/untrack"
	"github.com/gpupodctl/rpod/pkg/cli/version"
	"github.com/gpupodctl/rpod/pkg/logger"
)

// NewRootCommand builds the `rpod` root command.
func NewRootCommand(app *appctx.App) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rpod",
		Short: "Control plane for remote GPU pods",
		Long:  `rpod tracks aliases for remote GPU pods, drives their lifecycle against a compute provider, and keeps SSH config in sync.`,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				app.Logger.SetVerbosity(logger.Level(1))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return err
			}
			return errors.New("subcommand is required")
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(create.NewCreateCommand(app))
	cmd.AddCommand(start.NewStartCommand(app))
	cmd.AddCommand(stop.NewStopCommand(app))
	cmd.AddCommand(destroy.NewDestroyCommand(app))
	cmd.AddCommand(track.NewTrackCommand(app))
	cmd.AddCommand(untrack.NewUntrackCommand(app))
	cmd.AddCommand(list.NewListCommand(app))
	cmd.AddCommand(show.NewShowCommand(app))
	cmd.AddCommand(clean.NewCleanCommand(app))
	cmd.AddCommand(schedule.NewScheduleCommand(app))
	cmd.AddCommand(schedulertick.NewSchedulerTickCommand(app))
	cmd.AddCommand(template.NewTemplateCommand(app))
	cmd.AddCommand(config.NewConfigCommand(app))
	cmd.AddCommand(cursor.NewCursorCommand(app))
	cmd.AddCommand(shell.NewShellCommand(app))
	cmd.AddCommand(version.NewVersionCommand(app))

	return cmd
}
