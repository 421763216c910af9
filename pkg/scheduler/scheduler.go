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

package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/podmgr"
	"github.com/gpupodctl/rpod/pkg/sshconfig"
	"github.com/gpupodctl/rpod/pkg/store"
)

// Task and TaskStatus alias pkg/store's types: the document that
// persists them already lives there (Document.ScheduledTasks), and
// aliasing avoids a store<->scheduler import cycle while letting this
// package's API name them as its own.
type Task = store.Task
type TaskStatus = store.TaskStatus

const (
	TaskPending   = store.TaskPending
	TaskCompleted = store.TaskCompleted
	TaskCancelled = store.TaskCancelled
	TaskFailed    = store.TaskFailed
)

// ActionStopper is the subset of Pod Manager a tick needs: stopping a
// pod by alias. *podmgr.Manager satisfies it directly; tests supply a
// narrower fake.
type ActionStopper interface {
	StopPod(ctx context.Context, alias string) (podmgr.View, error)
}

// Scheduler persists deferred task state into the same directory as the
// pod store, and fires due tasks against a Pod Manager and SSH editor.
type Scheduler struct {
	dir    string
	pods   ActionStopper
	ssh    *sshconfig.Editor
	newID  func() string
	nowUTC func() time.Time
}

// New returns a Scheduler rooted at dir, using pods to execute stop
// actions and ssh to remove a fired task's managed block.
func New(dir string, pods ActionStopper, ssh *sshconfig.Editor) *Scheduler {
	return &Scheduler{
		dir:    dir,
		pods:   pods,
		ssh:    ssh,
		newID:  func() string { return uuid.NewString() },
		nowUTC: func() time.Time { return time.Now().UTC() },
	}
}

// ScheduleStop records a PENDING task to stop alias at when (interpreted
// as wall-clock local time, converted to a UTC unix epoch for storage).
func (s *Scheduler) ScheduleStop(alias string, when time.Time) (Task, error) {
	doc, err := store.Load(s.dir)
	if err != nil {
		return Task{}, err
	}

	task := Task{
		ID:        s.newID(),
		Action:    "stop",
		Alias:     alias,
		WhenEpoch: when.Unix(),
		Status:    TaskPending,
		CreatedAt: s.nowUTC(),
	}
	doc.ScheduledTasks = append(doc.ScheduledTasks, task)

	if err := store.Save(s.dir, doc); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Cancel transitions task taskID from PENDING to CANCELLED. Calls on a
// terminal-state task are no-ops that return the task unchanged.
func (s *Scheduler) Cancel(taskID string) (Task, error) {
	doc, err := store.Load(s.dir)
	if err != nil {
		return Task{}, err
	}

	idx, err := findTask(doc.ScheduledTasks, taskID)
	if err != nil {
		return Task{}, err
	}

	task := doc.ScheduledTasks[idx]
	if task.Status != TaskPending {
		return task, nil
	}
	task.Status = TaskCancelled
	doc.ScheduledTasks[idx] = task

	if err := store.Save(s.dir, doc); err != nil {
		return Task{}, err
	}
	return task, nil
}

// List returns every scheduled task, sorted by ascending WhenEpoch.
func (s *Scheduler) List() ([]Task, error) {
	doc, err := store.Load(s.dir)
	if err != nil {
		return nil, err
	}
	tasks := append([]Task(nil), doc.ScheduledTasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].WhenEpoch < tasks[j].WhenEpoch })
	return tasks, nil
}

// CleanCompleted removes every task whose status is COMPLETED or
// CANCELLED, returning the count removed. FAILED and PENDING tasks are
// kept; this operation never removes them.
func (s *Scheduler) CleanCompleted() (int, error) {
	doc, err := store.Load(s.dir)
	if err != nil {
		return 0, err
	}

	kept := doc.ScheduledTasks[:0]
	removed := 0
	for _, t := range doc.ScheduledTasks {
		if t.Status == TaskCompleted || t.Status == TaskCancelled {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	doc.ScheduledTasks = kept

	if removed == 0 {
		return 0, nil
	}
	if err := store.Save(s.dir, doc); err != nil {
		return 0, err
	}
	return removed, nil
}

// Tick loads every task, attempts the action of each one that is due
// (in ascending WhenEpoch order), and persists the resulting statuses.
// A task's action failing marks it FAILED with the error recorded;
// FAILED tasks are never retried on a later tick. Running Tick twice
// back-to-back with no clock movement is idempotent: the second run
// finds nothing newly due.
func (s *Scheduler) Tick(ctx context.Context) error {
	doc, err := store.Load(s.dir)
	if err != nil {
		return err
	}
	if len(doc.ScheduledTasks) == 0 {
		return nil
	}

	now := s.nowUTC().Unix()

	order := make([]int, len(doc.ScheduledTasks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return doc.ScheduledTasks[order[a]].WhenEpoch < doc.ScheduledTasks[order[b]].WhenEpoch
	})

	changed := false
	for _, i := range order {
		task := doc.ScheduledTasks[i]
		if !task.IsDue(now) {
			continue
		}

		if err := s.runAction(ctx, task); err != nil {
			msg := err.Error()
			task.Status = TaskFailed
			task.LastError = &msg
		} else {
			task.Status = TaskCompleted
		}
		doc.ScheduledTasks[i] = task
		changed = true
	}

	if !changed {
		return nil
	}
	return store.Save(s.dir, doc)
}

func (s *Scheduler) runAction(ctx context.Context, task Task) error {
	switch task.Action {
	case "stop":
		if _, err := s.pods.StopPod(ctx, task.Alias); err != nil {
			return err
		}
		if s.ssh != nil {
			_, _ = s.ssh.Remove(task.Alias)
		}
		return nil
	default:
		return &apperr.UnsupportedError{Op: task.Action, Reason: "unknown scheduled action"}
	}
}

func findTask(tasks []Task, id string) (int, error) {
	for i, t := range tasks {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, &apperr.BadSpecError{Field: "task id", Input: id, Reason: "not found"}
}
