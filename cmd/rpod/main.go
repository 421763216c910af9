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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gpupodctl/rpod/pkg/cli"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/config"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings(paths.ConfigDir)
	if err != nil {
		return err
	}

	apiKey, err := config.ResolveAPIKey(paths.APIKeyFile, config.PromptAPIKey)
	if err != nil {
		return err
	}

	l := logger.New(os.Stdout, logger.Level(settings.LogVerbosity), logger.WithColored())
	client := provider.NewRunPod(apiKey)
	app := appctx.New(l, paths, client)

	return cli.NewRootCommand(app).ExecuteContext(ctx)
}

// exitCode maps any non-nil error to a process exit code. rpod draws no
// distinction between a user mistake (bad alias, bad spec) and a system
// failure (provider, I/O) at the process boundary; every *apperr kind
// and anything unrecognized exits 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
