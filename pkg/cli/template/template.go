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

package template

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/store"
)

// NewTemplateCommand builds the `template` parent command: create,
// list, delete, and derive saved pod templates.
func NewTemplateCommand(app *appctx.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage saved pod templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return err
			}
			return errors.New("subcommand is required")
		},
	}

	cmd.AddCommand(newCreateCommand(app))
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	cmd.AddCommand(newDeriveCommand(app))
	cmd.AddCommand(newExportCommand(app))
	cmd.AddCommand(newImportCommand(app))
	return cmd
}

// portableTemplate is store.Template's on-disk shape for sharing a
// template as a standalone file, independent of pods.json. TOML rather
// than JSON since a template is meant to be hand-edited before sharing.
type portableTemplate struct {
	ID                string `toml:"id"`
	AliasTemplate     string `toml:"alias_template"`
	GPUSpec           string `toml:"gpu_spec"`
	StorageSpec       string `toml:"storage_spec"`
	ContainerDiskSpec string `toml:"container_disk_spec,omitempty"`
	Image             string `toml:"image,omitempty"`
}

func newExportCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <template-id> <path>",
		Short: "Write a saved template to a standalone TOML file for sharing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID, path := args[0], args[1]
			t, err := app.Pods.GetTemplate(templateID)
			if err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return &apperr.IOError{Path: path, Err: err}
			}
			defer f.Close()

			pt := portableTemplate{
				ID:                t.ID,
				AliasTemplate:     t.AliasTemplate,
				GPUSpec:           t.GPUSpec,
				StorageSpec:       t.StorageSpec,
				ContainerDiskSpec: t.ContainerDiskSpec,
				Image:             t.Image,
			}
			if err := toml.NewEncoder(f).Encode(pt); err != nil {
				return &apperr.IOError{Path: path, Err: err}
			}
			app.Logger.V(0).Infof("Exported template %s to %s\n", logger.Bold(t.ID), path)
			return nil
		},
	}
}

func newImportCommand(app *appctx.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load a template from a standalone TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var pt portableTemplate
			if _, err := toml.DecodeFile(path, &pt); err != nil {
				return &apperr.IOError{Path: path, Err: err}
			}

			t := store.Template{
				ID:                pt.ID,
				AliasTemplate:     pt.AliasTemplate,
				GPUSpec:           pt.GPUSpec,
				StorageSpec:       pt.StorageSpec,
				ContainerDiskSpec: pt.ContainerDiskSpec,
				Image:             pt.Image,
			}
			if err := app.Pods.AddTemplate(t, force); err != nil {
				return err
			}
			app.Logger.V(0).Infof("Imported template %s from %s\n", logger.Bold(t.ID), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing template")
	return cmd
}

func newCreateCommand(app *appctx.App) *cobra.Command {
	var (
		aliasTemplate string
		gpu           string
		storage       string
		containerDisk string
		image         string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "create <template-id>",
		Short: "Save a new pod template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := store.Template{
				ID:                args[0],
				AliasTemplate:     aliasTemplate,
				GPUSpec:           gpu,
				StorageSpec:       storage,
				ContainerDiskSpec: containerDisk,
				Image:             image,
			}
			if err := app.Pods.AddTemplate(t, force); err != nil {
				return err
			}
			app.Logger.V(0).Infof("Saved template %s\n", logger.Bold(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&aliasTemplate, "alias-template", "", "Alias naming pattern for pods created from this template")
	cmd.Flags().StringVar(&gpu, "gpu", "", "GPU spec, e.g. 1xA100")
	cmd.Flags().StringVar(&storage, "storage", "", "Volume storage spec, e.g. 50GB")
	cmd.Flags().StringVar(&containerDisk, "container-disk", "", "Container disk spec, e.g. 20GB")
	cmd.Flags().StringVar(&image, "image", "", "Container image reference")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing template")
	_ = cmd.MarkFlagRequired("alias-template")
	_ = cmd.MarkFlagRequired("gpu")
	return cmd
}

func newListCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Pods.ListTemplates()
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				app.Logger.V(0).Infof("No templates saved.\n")
				return nil
			}

			table := cliutil.NewTable([]string{"ID", "ALIAS PATTERN", "GPU", "STORAGE", "IMAGE"})
			for _, t := range templates {
				table.Append([]string{t.ID, t.AliasTemplate, t.GPUSpec, t.StorageSpec, t.Image})
			}
			table.Render()
			return nil
		},
	}
}

func newDeleteCommand(app *appctx.App) *cobra.Command {
	var missingOK bool

	cmd := &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Pods.RemoveTemplate(args[0], missingOK); err != nil {
				return err
			}
			app.Logger.V(0).Infof("Deleted template %s\n", logger.Bold(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOK, "missing-ok", false, "Do not error if the template does not exist")
	return cmd
}

func newDeriveCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "derive <alias> <template-id>",
		Short: "Save an existing pod's spec as a new template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, templateID := args[0], args[1]
			t, err := app.Pods.DeriveTemplate(cmd.Context(), alias, templateID)
			if err != nil {
				return err
			}
			app.Logger.V(0).Infof("Derived template %s from %s\n", logger.Bold(t.ID), logger.Bold(alias))
			return nil
		},
	}
}
