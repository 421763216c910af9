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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustLocal(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(layout, value, time.Local)
	require.NoError(t, err)
	return parsed
}

func TestParseTimeTomorrowForm(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")
	got, err := ParseTime("tomorrow 14:30", now)
	require.NoError(t, err)
	require.Equal(t, "2024-03-11 14:30", got.Format("2006-01-02 15:04"))
}

func TestParseTimeClockFormRollsToTomorrowWhenPast(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")
	got, err := ParseTime("08:00", now)
	require.NoError(t, err)
	require.Equal(t, "2024-03-11 08:00", got.Format("2006-01-02 15:04"))
}

func TestParseTimeClockFormEqualToCurrentMinuteRollsToTomorrow(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")
	got, err := ParseTime("09:00", now)
	require.NoError(t, err)
	require.Equal(t, "2024-03-11 09:00", got.Format("2006-01-02 15:04"))
}

func TestParseTimeClockFormStaysTodayWhenFuture(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")
	got, err := ParseTime("23:00", now)
	require.NoError(t, err)
	require.Equal(t, "2024-03-10 23:00", got.Format("2006-01-02 15:04"))
}

func TestParseTimeExplicitDatetimeForms(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")

	got, err := ParseTime("2024-04-01 08:00", now)
	require.NoError(t, err)
	require.Equal(t, "2024-04-01 08:00", got.Format("2006-01-02 15:04"))

	got, err = ParseTime("2024-04-01T08:00", now)
	require.NoError(t, err)
	require.Equal(t, "2024-04-01 08:00", got.Format("2006-01-02 15:04"))
}

func TestParseTimeRejectsImpossibleClock(t *testing.T) {
	now := mustLocal(t, "2006-01-02 15:04", "2024-03-10 09:00")
	_, err := ParseTime("25:99", now)
	require.Error(t, err)
}

func TestParseTimeRejectsEmpty(t *testing.T) {
	_, err := ParseTime("   ", time.Now())
	require.Error(t, err)
}

func TestParseDurationBoundaries(t *testing.T) {
	_, err := ParseDuration("0m")
	require.Error(t, err)

	d, err := ParseDuration("0h0m1s")
	require.NoError(t, err)
	require.Equal(t, time.Second, d)

	d, err = ParseDuration("1d2h30m")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour+2*time.Hour+30*time.Minute, d)
}
