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

package schedulertick

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/config"
	"github.com/gpupodctl/rpod/pkg/scheduler"
)

// NewSchedulerTickCommand builds the `scheduler-tick` verb: the single
// action the periodic driver (launchd on Darwin, or a cron entry a user
// sets up by hand elsewhere) invokes on an interval. It also makes sure
// the periodic driver itself is installed, so running the command once
// by hand is enough to arm future ticks.
func NewSchedulerTickCommand(app *appctx.App) *cobra.Command {
	return &cobra.Command{
		Use:    "scheduler-tick",
		Short:  "Run one pass of the task scheduler",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureAgent(app); err != nil {
				var unsupported *apperr.UnsupportedError
				if errors.As(err, &unsupported) {
					app.Logger.V(1).Infof("periodic driver: %v\n", err)
				} else {
					app.Logger.Warnf("failed to install periodic driver: %v\n", err)
				}
			}

			if err := app.Scheduler.Tick(cmd.Context()); err != nil {
				return err
			}
			app.Housekeeping(cmd.Context())
			return nil
		},
	}
}

func ensureAgent(app *appctx.App) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	logDir := filepath.Join(app.Paths.LogsDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	env := map[string]string{"PATH": os.Getenv("PATH")}
	key := strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	if key == "" {
		if data, err := os.ReadFile(app.Paths.APIKeyFile); err == nil {
			key = strings.TrimSpace(string(data))
		}
	}
	if key != "" {
		env[config.EnvAPIKey] = key
	}

	return scheduler.InstallAgent(scheduler.AgentConfig{
		ProgramArguments: []string{exe, "scheduler-tick"},
		EnvironmentVars:  env,
		LogFile:          filepath.Join(logDir, "scheduler.log"),
		PlistPath:        filepath.Join(app.Paths.LaunchAgentDir, "com.rpod.scheduler.plist"),
	})
}
