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

package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

// RunPod implements Client against RunPod's REST surface. The wire
// format is intentionally not exercised in detail here: this client is
// treated as an opaque external collaborator, so the methods below are
// a thin, honest mapping from Client's contract onto httpTransport
// calls rather than a faithful RunPod SDK port.
type RunPod struct {
	transport *httpTransport

	gpuTypesOnce sync.Once
	gpuTypes     []GPUType
	gpuTypesErr  error
}

var _ Client = (*RunPod)(nil)

// NewRunPod returns a RunPod client authenticated with apiKey.
func NewRunPod(apiKey string) *RunPod {
	return &RunPod{transport: newHTTPTransport(apiKey)}
}

func (r *RunPod) gpuTypeCatalog(ctx context.Context) ([]GPUType, error) {
	r.gpuTypesOnce.Do(func() {
		var resp struct {
			Data struct {
				GPUTypes []struct {
					ID       string `json:"id"`
					Model    string `json:"displayName"`
					MemoryGB int    `json:"memoryInGb"`
				} `json:"gpuTypes"`
			} `json:"data"`
		}
		err := r.transport.do(ctx, map[string]string{
			"query": "query GpuTypes { gpuTypes { id displayName memoryInGb } }",
		}, &resp)
		if err != nil {
			r.gpuTypesErr = &apperr.ProviderError{Op: "gpu_type_catalog", Err: err}
			return
		}
		catalog := make([]GPUType, 0, len(resp.Data.GPUTypes))
		for _, g := range resp.Data.GPUTypes {
			catalog = append(catalog, GPUType{ID: g.ID, Model: g.Model, MemoryGB: g.MemoryGB})
		}
		r.gpuTypes = catalog
	})
	return r.gpuTypes, r.gpuTypesErr
}

// FindGPUTypeID resolves model (case-insensitive) against the cached
// GPU type catalog. When more than one entry matches, the one with the
// greatest VRAM wins.
func (r *RunPod) FindGPUTypeID(ctx context.Context, model string) (string, error) {
	catalog, err := r.gpuTypeCatalog(ctx)
	if err != nil {
		return "", err
	}
	return pickGPUType(catalog, model)
}

// pickGPUType resolves model (case-insensitive) against catalog,
// preferring the match with the greatest VRAM when more than one
// entry shares the same model name.
func pickGPUType(catalog []GPUType, model string) (string, error) {
	var best *GPUType
	for i := range catalog {
		if strings.EqualFold(catalog[i].Model, model) {
			if best == nil || catalog[i].MemoryGB > best.MemoryGB {
				best = &catalog[i]
			}
		}
	}
	if best == nil {
		return "", &apperr.BadSpecError{Field: "gpu", Input: model, Reason: "no matching GPU type"}
	}
	return best.ID, nil
}

func (r *RunPod) CreatePod(ctx context.Context, req CreateRequest) (*PodRecord, error) {
	var resp struct {
		Data struct {
			PodFindAndDeployOnDemand struct {
				ID string `json:"id"`
			} `json:"podFindAndDeployOnDemand"`
		} `json:"data"`
	}

	vars := map[string]interface{}{
		"name":            req.Name,
		"imageName":       req.Image,
		"gpuTypeId":       req.GPUTypeID,
		"gpuCount":        req.GPUCount,
		"volumeInGb":      req.VolumeGB,
		"containerDiskInGb": req.ContainerDiskGB,
		"ports":           strings.Join(req.Ports, ","),
		"startSsh":        req.StartSSH,
		"publicIp":        req.PublicIP,
	}
	if err := r.transport.do(ctx, map[string]interface{}{
		"query":     createPodMutation,
		"variables": vars,
	}, &resp); err != nil {
		return nil, &apperr.ProviderError{Op: "create_pod", Err: err}
	}

	return r.GetPod(ctx, resp.Data.PodFindAndDeployOnDemand.ID)
}

const createPodMutation = `mutation CreatePod($name: String, $imageName: String, $gpuTypeId: String, $gpuCount: Int, $volumeInGb: Int, $containerDiskInGb: Int, $ports: String, $startSsh: Boolean, $publicIp: Boolean) {
  podFindAndDeployOnDemand(input: {name: $name, imageName: $imageName, gpuTypeId: $gpuTypeId, gpuCount: $gpuCount, volumeInGb: $volumeInGb, containerDiskInGb: $containerDiskInGb, ports: $ports, startSsh: $startSsh, publicIp: $publicIp}) {
    id
  }
}`

type podResponse struct {
	ID            string  `json:"id"`
	DesiredStatus string  `json:"desiredStatus"`
	Image         string  `json:"imageName"`
	CostPerHour   *float64 `json:"costPerHr"`
	Runtime       *struct {
		Ports []struct {
			PrivatePort int    `json:"privatePort"`
			PublicPort  int    `json:"publicPort"`
			IP          string `json:"ip"`
			IsIPPublic  bool   `json:"isIpPublic"`
		} `json:"ports"`
	} `json:"runtime"`
}

func (p *podResponse) toRecord() *PodRecord {
	record := &PodRecord{
		ID:            p.ID,
		DesiredStatus: p.DesiredStatus,
		Image:         p.Image,
		CostPerHour:   p.CostPerHour,
	}
	if p.Runtime != nil {
		runtime := &Runtime{}
		for _, port := range p.Runtime.Ports {
			runtime.Ports = append(runtime.Ports, PortMapping{
				PrivatePort: port.PrivatePort,
				PublicPort:  port.PublicPort,
				IP:          port.IP,
				IsIPPublic:  port.IsIPPublic,
			})
		}
		record.Runtime = runtime
	}
	return record
}

func (r *RunPod) GetPod(ctx context.Context, id string) (*PodRecord, error) {
	var resp struct {
		Data struct {
			Pod *podResponse `json:"pod"`
		} `json:"data"`
	}

	err := r.transport.do(ctx, map[string]interface{}{
		"query":     getPodQuery,
		"variables": map[string]string{"podId": id},
	}, &resp)
	if err != nil {
		return nil, &apperr.ProviderError{Op: "get_pod", Err: err}
	}
	if resp.Data.Pod == nil {
		return nil, &apperr.ProviderError{Op: "get_pod", Err: fmt.Errorf("pod %s not found", id)}
	}

	return resp.Data.Pod.toRecord(), nil
}

const getPodQuery = `query GetPod($podId: String!) {
  pod(input: {podId: $podId}) {
    id
    desiredStatus
    imageName
    costPerHr
    runtime { ports { privatePort publicPort ip isIpPublic } }
  }
}`

func (r *RunPod) GetPodStatus(ctx context.Context, id string) (Status, error) {
	record, err := r.GetPod(ctx, id)
	if err != nil {
		return StatusInvalid, nil
	}
	return DesiredStatusOf(record), nil
}

func (r *RunPod) StartPod(ctx context.Context, id string) error {
	if err := r.transport.do(ctx, map[string]interface{}{
		"query":     `mutation Resume($podId: String!) { podResume(input: {podId: $podId}) { id } }`,
		"variables": map[string]string{"podId": id},
	}, nil); err != nil {
		return &apperr.ProviderError{Op: "start_pod", Err: err}
	}
	return nil
}

func (r *RunPod) StopPod(ctx context.Context, id string) error {
	if err := r.transport.do(ctx, map[string]interface{}{
		"query":     `mutation Stop($podId: String!) { podStop(input: {podId: $podId}) { id } }`,
		"variables": map[string]string{"podId": id},
	}, nil); err != nil {
		return &apperr.ProviderError{Op: "stop_pod", Err: err}
	}
	return nil
}

func (r *RunPod) TerminatePod(ctx context.Context, id string) error {
	if err := r.transport.do(ctx, map[string]interface{}{
		"query":     `mutation Terminate($podId: String!) { podTerminate(input: {podId: $podId}) }`,
		"variables": map[string]string{"podId": id},
	}, nil); err != nil {
		return &apperr.ProviderError{Op: "terminate_pod", Err: err}
	}
	return nil
}
