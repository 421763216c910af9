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

package podmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/provider"
	"github.com/gpupodctl/rpod/pkg/store"
)

// fakeClient is a minimal in-memory provider.Client for exercising
// podmgr without a network.
type fakeClient struct {
	pods      map[string]*provider.PodRecord
	nextID    int
	stopCalls []string
	termCalls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{pods: map[string]*provider.PodRecord{}}
}

func (f *fakeClient) FindGPUTypeID(ctx context.Context, model string) (string, error) {
	return "gpu-" + model, nil
}

func (f *fakeClient) CreatePod(ctx context.Context, req provider.CreateRequest) (*provider.PodRecord, error) {
	f.nextID++
	id := "p" + itoa(f.nextID)
	record := &provider.PodRecord{
		ID:            id,
		DesiredStatus: "RUNNING",
		Image:         req.Image,
		Runtime: &provider.Runtime{Ports: []provider.PortMapping{
			{PrivatePort: 22, PublicPort: 22001, IP: "1.2.3.4", IsIPPublic: true},
		}},
	}
	f.pods[id] = record
	return record, nil
}

func (f *fakeClient) GetPod(ctx context.Context, id string) (*provider.PodRecord, error) {
	record, ok := f.pods[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return record, nil
}

func (f *fakeClient) GetPodStatus(ctx context.Context, id string) (provider.Status, error) {
	record, err := f.GetPod(ctx, id)
	if err != nil {
		return "", err
	}
	return provider.DesiredStatusOf(record), nil
}

func (f *fakeClient) StartPod(ctx context.Context, id string) error {
	if record, ok := f.pods[id]; ok {
		record.DesiredStatus = "RUNNING"
	}
	return nil
}

func (f *fakeClient) StopPod(ctx context.Context, id string) error {
	f.stopCalls = append(f.stopCalls, id)
	if record, ok := f.pods[id]; ok {
		record.DesiredStatus = "EXITED"
	}
	return nil
}

func (f *fakeClient) TerminatePod(ctx context.Context, id string) error {
	f.termCalls = append(f.termCalls, id)
	delete(f.pods, id)
	return nil
}

func (f *fakeClient) WaitForPodReady(ctx context.Context, id string, timeout int) (*provider.PodRecord, error) {
	return f.GetPod(ctx, id)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestCreateThenDestroy(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	dryRun, err := mgr.CreatePod(context.Background(), CreateRequest{
		Alias: "foo", GPUSpec: "1xH100", StorageSpec: "100GB", DryRun: true,
	})
	require.NoError(t, err)
	require.Equal(t, "dry-run", dryRun.PodID)

	doc, err := store.Load(dir)
	require.NoError(t, err)
	require.Empty(t, doc.GetAllAliases())

	view, err := mgr.CreatePod(context.Background(), CreateRequest{
		Alias: "foo", GPUSpec: "1xH100", StorageSpec: "100GB",
	})
	require.NoError(t, err)
	require.Equal(t, "1.2.3.4", view.IP)
	require.Equal(t, 22001, view.Port)

	doc, err = store.Load(dir)
	require.NoError(t, err)
	podID, ok := doc.GetAllAliases()["foo"]
	require.True(t, ok)

	gotID, err := mgr.DestroyPod(context.Background(), "foo")
	require.NoError(t, err)
	require.Equal(t, podID, gotID)
	require.Contains(t, client.stopCalls, podID)
	require.Contains(t, client.termCalls, podID)

	doc, err = store.Load(dir)
	require.NoError(t, err)
	require.Empty(t, doc.GetAllAliases())
}

func TestCreatePodAliasExistsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	_, err := mgr.CreatePod(context.Background(), CreateRequest{Alias: "foo", GPUSpec: "1xA100", StorageSpec: "20GB"})
	require.NoError(t, err)

	_, err = mgr.CreatePod(context.Background(), CreateRequest{Alias: "foo", GPUSpec: "1xA100", StorageSpec: "20GB"})
	var existsErr *apperr.AliasExistsError
	require.ErrorAs(t, err, &existsErr)
}

func TestTemplateIndexing(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	require.NoError(t, mgr.AddTemplate(store.Template{
		ID: "h", AliasTemplate: "h-{i}", GPUSpec: "1xH100", StorageSpec: "500GB",
	}, false))

	for _, alias := range []string{"h-1", "h-3"} {
		_, err := mgr.CreatePodFromTemplate(context.Background(), "h", false, false, alias)
		require.NoError(t, err)
	}

	view, err := mgr.CreatePodFromTemplate(context.Background(), "h", false, true, "")
	require.NoError(t, err)
	require.Equal(t, "dry-run", view.PodID)
	require.Equal(t, "h-2", view.Alias)

	doc, err := store.Load(dir)
	require.NoError(t, err)
	names := doc.AliasNames()
	require.NotContains(t, names, "h-2")

	created, err := mgr.CreatePodFromTemplate(context.Background(), "h", false, false, "")
	require.NoError(t, err)
	require.Equal(t, "h-2", created.Alias)

	next, err := mgr.CreatePodFromTemplate(context.Background(), "h", false, true, "")
	require.NoError(t, err)
	require.Equal(t, "h-4", next.Alias)
}

func TestListPodsFoldsProviderFailureToInvalid(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	_, err := mgr.CreatePod(context.Background(), CreateRequest{Alias: "a", GPUSpec: "1xA100", StorageSpec: "20GB"})
	require.NoError(t, err)
	_, err = mgr.CreatePod(context.Background(), CreateRequest{Alias: "b", GPUSpec: "1xA100", StorageSpec: "20GB"})
	require.NoError(t, err)

	doc, err := store.Load(dir)
	require.NoError(t, err)
	bID := doc.GetAllAliases()["b"]
	delete(client.pods, bID)

	views, err := mgr.ListPods(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "a", views[0].Alias)
	require.Equal(t, "b", views[1].Alias)
	require.Equal(t, provider.StatusInvalid, views[1].Status)

	removed, err := mgr.CleanInvalidAliases(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	doc, err = store.Load(dir)
	require.NoError(t, err)
	_, stillThere := doc.GetAllAliases()["b"]
	require.False(t, stillThere)
}

func TestStartStopAlreadyInStateIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	_, err := mgr.CreatePod(context.Background(), CreateRequest{Alias: "foo", GPUSpec: "1xA100", StorageSpec: "20GB"})
	require.NoError(t, err)

	_, err = mgr.StartPod(context.Background(), "foo")
	require.NoError(t, err)

	_, err = mgr.StopPod(context.Background(), "foo")
	require.NoError(t, err)
	_, err = mgr.StopPod(context.Background(), "foo")
	require.NoError(t, err)
}

func TestGetNetworkInfoMissingRaisesAfterRefetch(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	mgr := New(dir, client)

	_, err := mgr.CreatePod(context.Background(), CreateRequest{Alias: "foo", GPUSpec: "1xA100", StorageSpec: "20GB"})
	require.NoError(t, err)

	doc, err := store.Load(dir)
	require.NoError(t, err)
	podID := doc.GetAllAliases()["foo"]
	client.pods[podID].Runtime = nil

	_, _, err = mgr.GetNetworkInfo(context.Background(), "foo")
	var netErr *apperr.NetworkInfoMissingError
	require.ErrorAs(t, err, &netErr)
}
