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

// Package appctx bundles the dependencies every rpod subcommand needs
// (store directory, pod manager, scheduler, SSH editor, logger) into a
// single value built once in cmd/rpod/main.go and passed to every
// NewXCommand constructor.
package appctx

import (
	"context"

	"github.com/gpupodctl/rpod/pkg/config"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/podmgr"
	"github.com/gpupodctl/rpod/pkg/provider"
	"github.com/gpupodctl/rpod/pkg/scheduler"
	"github.com/gpupodctl/rpod/pkg/sshconfig"
)

// App is the composition root handed to every verb package.
type App struct {
	Logger    logger.Logger
	Paths     config.Paths
	Pods      *podmgr.Manager
	Scheduler *scheduler.Scheduler
	SSH       *sshconfig.Editor
}

// New wires a fresh App rooted at paths against client.
func New(l logger.Logger, paths config.Paths, client provider.Client) *App {
	pods := podmgr.New(paths.ConfigDir, client)
	ssh := sshconfig.New(paths.SSHConfigFile)
	sched := scheduler.New(paths.ConfigDir, pods, ssh)
	return &App{Logger: l, Paths: paths, Pods: pods, Scheduler: sched, SSH: ssh}
}

// Housekeeping runs the silent post-action reconciliation every
// mutating command performs: drop INVALID aliases, prune SSH blocks
// with no matching alias, and clean terminal scheduled tasks. Every
// failure is logged at debug level and otherwise ignored.
func (a *App) Housekeeping(ctx context.Context) {
	if _, err := a.Pods.CleanInvalidAliases(ctx); err != nil {
		a.Logger.V(1).Infof("housekeeping: clean invalid aliases: %v", err)
	}

	if names, err := a.Pods.AliasNames(); err != nil {
		a.Logger.V(1).Infof("housekeeping: list aliases for ssh prune: %v", err)
	} else {
		valid := make(map[string]struct{}, len(names))
		for _, name := range names {
			valid[name] = struct{}{}
		}
		if _, err := a.SSH.Prune(valid); err != nil {
			a.Logger.V(1).Infof("housekeeping: prune ssh config: %v", err)
		}
	}

	if _, err := a.Scheduler.CleanCompleted(); err != nil {
		a.Logger.V(1).Infof("housekeeping: clean completed tasks: %v", err)
	}
}
