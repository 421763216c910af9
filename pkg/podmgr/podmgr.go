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

// Package podmgr is the sole mutator of the on-disk store and the sole
// reader of the remote pod provider's state on behalf of the command
// layer. Every exported method loads a fresh document, does its work,
// and saves before returning if it changed the document, matching how
// original's PodManager reads
// and writes pod_configs.json around each call rather than caching it
// across a long-lived process.
package podmgr

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/namegen"
	"github.com/gpupodctl/rpod/pkg/podspec"
	"github.com/gpupodctl/rpod/pkg/provider"
	"github.com/gpupodctl/rpod/pkg/store"
)

// listConcurrency bounds how many provider lookups ListPods issues at
// once, so a large alias set doesn't open one outbound request per
// entry simultaneously.
const listConcurrency = 8

// View is the Pod Manager's read model for a single alias: the store's
// idea of its pod-id, folded together with whatever the provider
// reports right now (or INVALID if the provider lookup failed).
type View struct {
	Alias  string
	PodID  string
	Status provider.Status
	Image  string
	IP     string
	Port   int

	// GPU and VolumeGB come from the store's creation-time PodSpec, not
	// the provider, which never echoes either back. Both are zero-value
	// when unknown, e.g. for a TrackPod'd alias rpod never created.
	GPU      string
	VolumeGB int

	// CostPerHour is whatever the provider's own record reports right
	// now; nil when the provider doesn't know.
	CostPerHour *float64
}

// Manager orchestrates alias lifecycle on top of a store directory and
// a remote pod client.
type Manager struct {
	dir      string
	client   provider.Client
	aliasGen func(taken func(string) bool) (string, error)
}

// New returns a Manager persisting into dir and talking to client.
// Alias-less CreatePod calls generate a name via pkg/namegen by default.
func New(dir string, client provider.Client) *Manager {
	return &Manager{dir: dir, client: client, aliasGen: namegen.Generate}
}

// CreateRequest is everything a caller supplies to CreatePod. Alias may
// be empty, in which case one is generated.
type CreateRequest struct {
	Alias             string
	GPUSpec           string
	StorageSpec       string
	ContainerDiskSpec string
	Image             string
	Force             bool
	DryRun            bool
}

func toView(alias string, record *provider.PodRecord, spec *store.PodSpec) View {
	status := provider.DesiredStatusOf(record)
	v := View{Alias: alias, Status: status}
	if record != nil {
		v.PodID = record.ID
		v.Image = record.Image
		v.CostPerHour = record.CostPerHour
		if ip, port, err := provider.ExtractNetworkInfo(record); err == nil {
			v.IP, v.Port = ip, port
		}
	}
	if spec != nil {
		v.GPU = spec.GPU
		v.VolumeGB = spec.VolumeGB
	}
	return v
}

// CreatePod reserves alias (generating one if req.Alias is empty),
// resolves req.GPUSpec to a provider GPU type, creates the pod, persists
// the alias immediately, and waits for it to come up. If persistence
// succeeds but the wait times out, the alias stays in the store so a
// later `start` can pick the pod back up.
func (m *Manager) CreatePod(ctx context.Context, req CreateRequest) (View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return View{}, err
	}

	alias := req.Alias
	if alias == "" {
		generated, err := m.generateAlias(doc)
		if err != nil {
			return View{}, err
		}
		alias = generated
	} else if _, exists := doc.GetAllAliases()[alias]; exists && !req.Force {
		return View{}, &apperr.AliasExistsError{Alias: alias}
	}

	gpu, err := podspec.ParseGPUSpec(req.GPUSpec)
	if err != nil {
		return View{}, err
	}
	storageSpec, err := podspec.ParseStorageSpec(req.StorageSpec)
	if err != nil {
		return View{}, err
	}
	containerDiskGB := storageSpec.GB
	if req.ContainerDiskSpec != "" {
		containerDisk, err := podspec.ParseStorageSpec(req.ContainerDiskSpec)
		if err != nil {
			return View{}, err
		}
		containerDiskGB = containerDisk.GB
	}

	gpuDisplay := fmt.Sprintf("%dx%s", gpu.Count, gpu.Model)

	if req.DryRun {
		return View{Alias: alias, PodID: "dry-run", Status: provider.StatusStopped, Image: req.Image, GPU: gpuDisplay, VolumeGB: storageSpec.GB}, nil
	}

	gpuTypeID, err := m.client.FindGPUTypeID(ctx, gpu.Model)
	if err != nil {
		return View{}, err
	}

	record, err := m.client.CreatePod(ctx, provider.CreateRequest{
		Name:            alias,
		Image:           req.Image,
		GPUTypeID:       gpuTypeID,
		GPUCount:        gpu.Count,
		VolumeGB:        storageSpec.GB,
		ContainerDiskGB: containerDiskGB,
		Ports:           []string{"22/tcp"},
		StartSSH:        true,
		PublicIP:        true,
	})
	if err != nil {
		return View{}, err
	}

	doc.AddAlias(alias, record.ID, true)
	spec := store.PodSpec{GPU: gpuDisplay, VolumeGB: storageSpec.GB}
	doc.SetPodSpec(alias, spec)
	if err := store.Save(m.dir, doc); err != nil {
		return View{}, err
	}

	ready, err := m.client.WaitForPodReady(ctx, record.ID, 300)
	if err != nil {
		// The alias is already persisted; the caller can retry with
		// `start` once the pod catches up.
		return toView(alias, record, &spec), err
	}

	return toView(alias, ready, &spec), nil
}

func (m *Manager) generateAlias(doc *store.Document) (string, error) {
	existing := doc.GetAllAliases()
	return m.aliasGen(func(name string) bool {
		_, taken := existing[name]
		return taken
	})
}

// StartPod resolves alias to a pod-id, starts it, and waits (bounded to
// 120s per original) for it to report RUNNING. Starting an
// already-running pod is not an error.
func (m *Manager) StartPod(ctx context.Context, alias string) (View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return View{}, err
	}
	podID, ok := doc.GetAllAliases()[alias]
	if !ok {
		return View{}, aliasNotFound(doc, alias)
	}

	if err := m.client.StartPod(ctx, podID); err != nil {
		return View{}, err
	}

	record, err := m.client.WaitForPodReady(ctx, podID, 120)
	if err != nil {
		return View{}, err
	}
	return toView(alias, record, doc.GetPodSpec(alias)), nil
}

// StopPod resolves alias and stops the pod. Stopping an already-stopped
// pod is not an error; the provider is expected to treat it as a no-op.
func (m *Manager) StopPod(ctx context.Context, alias string) (View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return View{}, err
	}
	podID, ok := doc.GetAllAliases()[alias]
	if !ok {
		return View{}, aliasNotFound(doc, alias)
	}

	if err := m.client.StopPod(ctx, podID); err != nil {
		return View{}, err
	}
	record, err := m.client.GetPod(ctx, podID)
	if err != nil {
		return toView(alias, nil, doc.GetPodSpec(alias)), nil
	}
	return toView(alias, record, doc.GetPodSpec(alias)), nil
}

// DestroyPod resolves alias, best-effort stops it (ignoring errors) if
// it reports RUNNING, terminates it, then removes the alias. It returns
// the pod-id for the caller to report. A failure before termination
// leaves the alias in place for a retry.
func (m *Manager) DestroyPod(ctx context.Context, alias string) (string, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return "", err
	}
	podID, ok := doc.GetAllAliases()[alias]
	if !ok {
		return "", aliasNotFound(doc, alias)
	}

	if record, err := m.client.GetPod(ctx, podID); err == nil && provider.DesiredStatusOf(record) == provider.StatusRunning {
		_ = m.client.StopPod(ctx, podID)
	}

	if err := m.client.TerminatePod(ctx, podID); err != nil {
		return "", err
	}

	doc.RemoveAlias(alias)
	if err := store.Save(m.dir, doc); err != nil {
		return "", err
	}

	return podID, nil
}

// GetPod fetches the alias's live record. A provider error folds into a
// View carrying the known pod-id with status INVALID, never an error.
func (m *Manager) GetPod(ctx context.Context, alias string) (View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return View{}, err
	}
	podID, ok := doc.GetAllAliases()[alias]
	if !ok {
		return View{}, aliasNotFound(doc, alias)
	}

	record, err := m.client.GetPod(ctx, podID)
	if err != nil {
		return View{Alias: alias, PodID: podID, Status: provider.StatusInvalid}, nil
	}
	return toView(alias, record, doc.GetPodSpec(alias)), nil
}

// ListPods returns every tracked alias's view, sorted by alias name.
// Provider lookups run concurrently, bounded by listConcurrency;
// a failed lookup folds to an INVALID view rather than aborting the
// whole listing.
func (m *Manager) ListPods(ctx context.Context) ([]View, error) {
	doc, err := store.Load(m.dir)
	if err != nil {
		return nil, err
	}

	aliases := doc.GetAllAliases()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]View, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	for i, name := range names {
		i, name := i, name
		podID := aliases[name]
		spec := doc.GetPodSpec(name)
		g.Go(func() error {
			record, err := m.client.GetPod(gctx, podID)
			if err != nil {
				views[i] = View{Alias: name, PodID: podID, Status: provider.StatusInvalid}
				return nil
			}
			views[i] = toView(name, record, spec)
			return nil
		})
	}
	// errgroup's Go functions never return an error here (failures fold
	// to INVALID in place, including lookups cut short by a cancelled
	// ctx), so Wait always returns nil.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return views, nil
}

// CleanInvalidAliases removes every alias whose current provider status
// is INVALID, returning the number removed.
func (m *Manager) CleanInvalidAliases(ctx context.Context) (int, error) {
	views, err := m.ListPods(ctx)
	if err != nil {
		return 0, err
	}

	doc, err := store.Load(m.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range views {
		if v.Status == provider.StatusInvalid {
			if _, ok := doc.RemoveAlias(v.Alias); ok {
				removed++
			}
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := store.Save(m.dir, doc); err != nil {
		return 0, err
	}
	return removed, nil
}

// GetNetworkInfo returns alias's (ip, port). If the provider's live
// record has no public SSH endpoint, it raises
// *apperr.NetworkInfoMissingError after the refetch, rather than before.
func (m *Manager) GetNetworkInfo(ctx context.Context, alias string) (string, int, error) {
	v, err := m.GetPod(ctx, alias)
	if err != nil {
		return "", 0, err
	}
	if v.IP != "" && v.Port != 0 {
		return v.IP, v.Port, nil
	}

	v, err = m.GetPod(ctx, alias)
	if err != nil {
		return "", 0, err
	}
	if v.IP == "" || v.Port == 0 {
		return "", 0, &apperr.NetworkInfoMissingError{Alias: alias}
	}
	return v.IP, v.Port, nil
}

func aliasNotFound(doc *store.Document, alias string) error {
	names := doc.AliasNames()
	sort.Strings(names)
	return &apperr.AliasNotFoundError{Alias: alias, Candidates: names}
}

// WithAliasGenerator overrides the function CreatePod uses to name an
// alias-less pod, for tests that need deterministic names.
func (m *Manager) WithAliasGenerator(gen func(taken func(string) bool) (string, error)) *Manager {
	m.aliasGen = gen
	return m
}
