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

// Package config implements the `config` verb, which manages per-alias
// key/value settings (currently just the remote working directory
// path). It is distinct from pkg/config, which resolves rpod's own
// on-disk paths and settings.
package config

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/cli/cliutil"
)

// NewConfigCommand builds the `config` parent command.
func NewConfigCommand(app *appctx.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set per-alias configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return err
			}
			return errors.New("subcommand is required")
		},
	}

	cmd.AddCommand(newSetCommand(app))
	cmd.AddCommand(newGetCommand(app))
	cmd.AddCommand(newListCommand(app))
	return cmd
}

func newSetCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <alias> <key> <value>",
		Short: "Set a config value for an alias",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, key, value := args[0], args[1], args[2]
			if err := app.Pods.SetPodConfig(alias, key, value); err != nil {
				return err
			}
			app.Logger.V(0).Infof("Set %s.%s = %s\n", alias, key, value)
			return nil
		},
	}
}

func newGetCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <alias>",
		Short: "Show config values for an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Pods.GetPodConfig(args[0])
			if err != nil {
				return err
			}
			if cfg == nil || cfg.Path == "" {
				app.Logger.V(0).Infof("No config set for %s\n", args[0])
				return nil
			}
			app.Logger.V(0).Infof("path = %s\n", cfg.Path)
			return nil
		},
	}
}

func newListCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all aliases with configuration set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.Pods.AliasNames()
			if err != nil {
				return err
			}

			table := cliutil.NewTable([]string{"ALIAS", "PATH"})
			var any bool
			for _, name := range names {
				cfg, err := app.Pods.GetPodConfig(name)
				if err != nil || cfg == nil || cfg.Path == "" {
					continue
				}
				any = true
				table.Append([]string{name, cfg.Path})
			}
			if !any {
				app.Logger.V(0).Infof("No aliases have configuration set.\n")
				return nil
			}
			table.Render()
			return nil
		},
	}
}
