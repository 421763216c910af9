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

package create

import (
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/podmgr"
	"github.com/gpupodctl/rpod/pkg/status"
)

type options struct {
	GPU           string
	Storage       string
	ContainerDisk string
	Template      string
	Image         string
	Force         bool
	DryRun        bool
}

// NewCreateCommand builds `create [alias]`.
func NewCreateCommand(app *appctx.App) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "create [alias]",
		Short: "Create a new pod and track it under an alias",
		Long:  `Create a new pod and track it under an alias, generating one if omitted`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var alias string
			if len(args) == 1 {
				alias = args[0]
			}
			return run(cmd, app, alias, opts)
		},
	}

	cmd.Flags().StringVar(&opts.GPU, "gpu", "", "GPU spec, e.g. 1xA100")
	cmd.Flags().StringVar(&opts.Storage, "storage", "", "Volume storage spec, e.g. 50GB")
	cmd.Flags().StringVar(&opts.ContainerDisk, "container-disk", "", "Container disk spec, e.g. 20GB")
	cmd.Flags().StringVar(&opts.Template, "template", "", "Create from a saved template instead of individual specs")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Container image reference")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing alias")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be created without creating it")

	return cmd
}

func run(cmd *cobra.Command, app *appctx.App, alias string, opts options) error {
	usingSpecs := opts.GPU != "" || opts.Storage != ""
	if opts.Template != "" && usingSpecs {
		return &apperr.SchedulingConflictError{Flags: []string{"--template", "--gpu/--storage"}}
	}

	ctx := cmd.Context()
	var view podmgr.View
	var err error

	if opts.Template != "" {
		view, err = app.Pods.CreatePodFromTemplate(ctx, opts.Template, opts.Force, opts.DryRun, alias)
	} else {
		view, err = app.Pods.CreatePod(ctx, podmgr.CreateRequest{
			Alias:             alias,
			GPUSpec:           opts.GPU,
			StorageSpec:       opts.Storage,
			ContainerDiskSpec: opts.ContainerDisk,
			Image:             opts.Image,
			Force:             opts.Force,
			DryRun:            opts.DryRun,
		})
	}
	if err != nil {
		return err
	}

	if opts.DryRun {
		app.Logger.V(0).Infof("Would create alias %s (%s)\n", logger.Bold(view.Alias), opts.GPU)
		return nil
	}

	app.Logger.V(0).Infof("Created alias %s -> pod %s\n", logger.Bold(view.Alias), view.PodID)

	if view.IP != "" && view.Port != 0 {
		if err := app.SSH.Upsert(view.Alias, view.PodID, view.IP, view.Port); err != nil {
			app.Logger.Warnf("failed to update ssh config: %v\n", err)
		}
	}

	if err := runPostCreate(app, view.Alias); err != nil {
		app.Logger.Warnf("post-create setup failed: %v\n", err)
	}

	app.Housekeeping(ctx)
	return nil
}

func runPostCreate(app *appctx.App, alias string) error {
	return status.RunAliasStep("Running setup for", alias, func() error {
		return cliutil.RunLocalSetup(app.Paths.LocalSetup, app.Logger)
	})
}
