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

package store

import "time"

// TaskStatus is the scheduled task state machine's current state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskCancelled TaskStatus = "CANCELLED"
	TaskFailed    TaskStatus = "FAILED"
)

// Task is a deferred action, currently always a pod stop, that fires at
// an absolute wall-clock time. It references its alias by name, not by
// pod-id: deleting the alias does not cascade-delete the task.
type Task struct {
	ID        string     `json:"id"`
	Action    string     `json:"action"`
	Alias     string     `json:"alias"`
	WhenEpoch int64      `json:"when_epoch"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	LastError *string    `json:"last_error,omitempty"`
}

// IsDue reports whether t is still pending and its fire time has passed.
func (t Task) IsDue(nowEpoch int64) bool {
	return t.Status == TaskPending && t.WhenEpoch <= nowEpoch
}
