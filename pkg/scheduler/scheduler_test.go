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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gpupodctl/rpod/pkg/podmgr"
	"github.com/gpupodctl/rpod/pkg/sshconfig"
)

type fakeStopper struct {
	stopped []string
	failOn  map[string]bool
}

func (f *fakeStopper) StopPod(ctx context.Context, alias string) (podmgr.View, error) {
	if f.failOn[alias] {
		return podmgr.View{}, errTest
	}
	f.stopped = append(f.stopped, alias)
	return podmgr.View{Alias: alias}, nil
}

var errTest = &testErr{"stop failed"}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

func newTestScheduler(t *testing.T, pods ActionStopper, now time.Time) *Scheduler {
	t.Helper()
	dir := t.TempDir()
	ssh := sshconfig.New(filepath.Join(dir, "ssh_config"))
	s := New(dir, pods, ssh)
	counter := 0
	s.newID = func() string {
		counter++
		return "task-" + string(rune('a'+counter))
	}
	s.nowUTC = func() time.Time { return now }
	return s
}

func TestScheduledStopFires(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	task, err := s.ScheduleStop("x", base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, TaskPending, task.Status)

	s.nowUTC = func() time.Time { return base.Add(60 * time.Second) }
	require.NoError(t, s.Tick(context.Background()))
	tasks, err := s.List()
	require.NoError(t, err)
	require.Equal(t, TaskPending, tasks[0].Status)
	require.Empty(t, pods.stopped)

	s.nowUTC = func() time.Time { return base.Add(130 * time.Second) }
	require.NoError(t, s.Tick(context.Background()))
	tasks, err = s.List()
	require.NoError(t, err)
	require.Equal(t, TaskCompleted, tasks[0].Status)
	require.Equal(t, []string{"x"}, pods.stopped)

	s.nowUTC = func() time.Time { return base.Add(190 * time.Second) }
	require.NoError(t, s.Tick(context.Background()))
	tasks, err = s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, pods.stopped)
}

func TestScheduledStopCancels(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	task, err := s.ScheduleStop("x", base.Add(2*time.Minute))
	require.NoError(t, err)

	s.nowUTC = func() time.Time { return base.Add(30 * time.Second) }
	cancelled, err := s.Cancel(task.ID)
	require.NoError(t, err)
	require.Equal(t, TaskCancelled, cancelled.Status)

	s.nowUTC = func() time.Time { return base.Add(130 * time.Second) }
	require.NoError(t, s.Tick(context.Background()))
	require.Empty(t, pods.stopped)
}

func TestCancelOnTerminalStateIsNoop(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	task, err := s.ScheduleStop("x", base.Add(time.Minute))
	require.NoError(t, err)
	cancelled, err := s.Cancel(task.ID)
	require.NoError(t, err)
	require.Equal(t, TaskCancelled, cancelled.Status)

	again, err := s.Cancel(task.ID)
	require.NoError(t, err)
	require.Equal(t, TaskCancelled, again.Status)
}

func TestTickIsIdempotent(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	_, err := s.ScheduleStop("x", base.Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.Tick(context.Background()))
	firstRun, err := s.List()
	require.NoError(t, err)

	require.NoError(t, s.Tick(context.Background()))
	secondRun, err := s.List()
	require.NoError(t, err)

	require.Equal(t, firstRun, secondRun)
	require.Len(t, pods.stopped, 1)
}

func TestTickMarksFailedOnActionError(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{"x": true}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	_, err := s.ScheduleStop("x", base.Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.Tick(context.Background()))
	tasks, err := s.List()
	require.NoError(t, err)
	require.Equal(t, TaskFailed, tasks[0].Status)
	require.NotNil(t, tasks[0].LastError)

	require.NoError(t, s.Tick(context.Background()))
	tasks, err = s.List()
	require.NoError(t, err)
	require.Equal(t, TaskFailed, tasks[0].Status)
}

func TestCleanCompletedKeepsFailed(t *testing.T) {
	pods := &fakeStopper{failOn: map[string]bool{"fails": true}}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, pods, base)

	_, err := s.ScheduleStop("ok", base.Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.ScheduleStop("fails", base.Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.Tick(context.Background()))

	removed, err := s.CleanCompleted()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	tasks, err := s.List()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, TaskFailed, tasks[0].Status)
}
