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

// Package provider is the façade rpod's core talks to instead of the
// compute provider's SDK directly. Client is the abstract contract;
// RunPod is the one concrete implementation, wrapping the provider's
// REST surface behind an interface small enough to fake in tests.
package provider

import "context"

// Status is the coarse pod status Pod Manager reasons about.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusStopped Status = "STOPPED"
	StatusInvalid Status = "INVALID"
)

// PortMapping is one entry of a pod's exposed network ports.
type PortMapping struct {
	PrivatePort int
	PublicPort  int
	IP          string
	IsIPPublic  bool
}

// Runtime is present on a pod record once the provider has scheduled it
// onto a machine.
type Runtime struct {
	Ports []PortMapping
}

// PodRecord is the provider's view of a pod.
type PodRecord struct {
	ID            string
	DesiredStatus string // "RUNNING", "EXITED", ...
	Runtime       *Runtime
	Image         string
	CostPerHour   *float64
}

// GPUType is one entry of the provider's GPU catalog.
type GPUType struct {
	ID       string
	Model    string
	MemoryGB int
}

// CreateRequest is everything needed to create a pod.
type CreateRequest struct {
	Name            string
	Image           string
	GPUTypeID       string
	GPUCount        int
	VolumeGB        int
	ContainerDiskGB int
	Ports           []string
	StartSSH        bool
	PublicIP        bool
}

// Client is the abstract remote pod client. Every method takes a
// context so a blocking call can be cancelled on process exit.
type Client interface {
	FindGPUTypeID(ctx context.Context, model string) (string, error)
	CreatePod(ctx context.Context, req CreateRequest) (*PodRecord, error)
	GetPod(ctx context.Context, id string) (*PodRecord, error)
	GetPodStatus(ctx context.Context, id string) (Status, error)
	StartPod(ctx context.Context, id string) error
	StopPod(ctx context.Context, id string) error
	TerminatePod(ctx context.Context, id string) error
	// WaitForPodReady polls at a bounded cadence until the pod reports
	// a runtime and RUNNING status, or timeout elapses.
	WaitForPodReady(ctx context.Context, id string, timeout int) (*PodRecord, error)
}

// DesiredStatusOf folds a provider's raw desiredStatus string into the
// coarse Status enum Pod Manager works with.
func DesiredStatusOf(record *PodRecord) Status {
	if record == nil || record.ID == "" {
		return StatusInvalid
	}
	switch record.DesiredStatus {
	case "RUNNING":
		return StatusRunning
	case "EXITED":
		return StatusStopped
	default:
		return StatusStopped
	}
}
