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
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

// pollInterval is the bounded cadence wait_for_pod_ready polls at,
// matching original's five-second sleep between get_pod calls.
const pollInterval = 5 * time.Second

// WaitForPodReady polls GetPod until it reports a runtime and RUNNING
// status, or timeoutSeconds elapses. It uses an exponential backoff
// capped at pollInterval rather than a fixed sleep loop, so a pod that
// becomes ready quickly isn't held to a full 5s tick, while a slow one
// never backs off past the original cadence.
func (r *RunPod) WaitForPodReady(ctx context.Context, id string, timeoutSeconds int) (*PodRecord, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = pollInterval
	b.MaxElapsedTime = time.Duration(timeoutSeconds) * time.Second

	var record *PodRecord
	operation := func() error {
		current, err := r.GetPod(ctx, id)
		if err != nil {
			return err
		}
		if current.Runtime == nil || DesiredStatusOf(current) != StatusRunning {
			return fmt.Errorf("pod %s not ready yet", id)
		}
		record = current
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, &apperr.ProviderError{Op: "wait_for_pod_ready", Err: fmt.Errorf("timed out after %ds: %w", timeoutSeconds, err)}
	}
	return record, nil
}
