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
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/cli/appctx"
	"github.com/gpupodctl/rpod/pkg/config"
	"github.com/gpupodctl/rpod/pkg/logger"
	"github.com/gpupodctl/rpod/pkg/provider"
)

// fakeClient is a minimal in-memory provider.Client, enough to drive
// the command layer without a network.
type fakeClient struct{ nextID int }

func (f *fakeClient) FindGPUTypeID(ctx context.Context, model string) (string, error) {
	return "gpu-" + model, nil
}

func (f *fakeClient) CreatePod(ctx context.Context, req provider.CreateRequest) (*provider.PodRecord, error) {
	f.nextID++
	return &provider.PodRecord{ID: "p1", DesiredStatus: "RUNNING", Image: req.Image}, nil
}

func (f *fakeClient) GetPod(ctx context.Context, id string) (*provider.PodRecord, error) {
	return &provider.PodRecord{ID: id, DesiredStatus: "RUNNING"}, nil
}

func (f *fakeClient) GetPodStatus(ctx context.Context, id string) (provider.Status, error) {
	return provider.Status("RUNNING"), nil
}

func (f *fakeClient) StartPod(ctx context.Context, id string) error     { return nil }
func (f *fakeClient) StopPod(ctx context.Context, id string) error      { return nil }
func (f *fakeClient) TerminatePod(ctx context.Context, id string) error { return nil }

func (f *fakeClient) WaitForPodReady(ctx context.Context, id string, timeout int) (*provider.PodRecord, error) {
	return f.GetPod(ctx, id)
}

func newTestApp(t *testing.T) *appctx.App {
	dir := t.TempDir()
	paths := config.Paths{
		ConfigDir:     dir,
		LocalSetup:    filepath.Join(dir, "setup_local.sh"),
		RemoteSetup:   filepath.Join(dir, "setup_remote.sh"),
		SSHConfigFile: filepath.Join(dir, "ssh_config"),
	}
	l := logger.New(&bytes.Buffer{}, logger.Level(0))
	return appctx.New(l, paths, &fakeClient{})
}

func TestCreateRejectsTemplateWithSpecs(t *testing.T) {
	app := newTestApp(t)
	err := run(&cobra.Command{}, app, "foo", options{Template: "h100", GPU: "1xA100"})
	var conflict *apperr.SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCreateDryRunDoesNotTrackAlias(t *testing.T) {
	app := newTestApp(t)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	err := run(cmd, app, "foo", options{GPU: "1xA100", Storage: "20GB", DryRun: true})
	require.NoError(t, err)

	names, err := app.Pods.AliasNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}
