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

// Package scheduler parses schedule times and durations, persists a
// queue of deferred pod actions, and ticks it against a Pod Manager.
package scheduler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

var (
	tomorrowRE = regexp.MustCompile(`(?i)^tomorrow\s+(\d{1,2}):(\d{2})$`)
	clockRE    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	explicitLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04"}
)

var naturalLanguageParser = newWhenParser()

func newWhenParser() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}

// ParseTime parses text against the four accepted absolute forms, tried
// in order, relative to now (which callers pass explicitly so tests are
// deterministic). Empty input, out-of-range clock values, and anything
// none of the four forms accept raise *apperr.BadSpecError.
func ParseTime(text string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, &apperr.BadSpecError{Field: "time", Input: text, Reason: "empty"}
	}

	if m := tomorrowRE.FindStringSubmatch(trimmed); m != nil {
		return clockOn(now.AddDate(0, 0, 1), m[1], m[2], text)
	}

	if m := clockRE.FindStringSubmatch(trimmed); m != nil {
		target, err := clockOn(now, m[1], m[2], text)
		if err != nil {
			return time.Time{}, err
		}
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
		}
		return target, nil
	}

	for _, layout := range explicitLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			return parsed, nil
		}
	}

	result, err := naturalLanguageParser.Parse(trimmed, now)
	if err != nil || result == nil {
		return time.Time{}, &apperr.BadSpecError{Field: "time", Input: text, Reason: "unparseable"}
	}
	return result.Time, nil
}

func clockOn(base time.Time, hourStr, minuteStr, original string) (time.Time, error) {
	hour, err1 := strconv.Atoi(hourStr)
	minute, err2 := strconv.Atoi(minuteStr)
	if err1 != nil || err2 != nil || hour > 23 || minute > 59 {
		return time.Time{}, &apperr.BadSpecError{Field: "time", Input: original, Reason: "impossible clock value"}
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location()), nil
}

var durationSegmentRE = regexp.MustCompile(`(?i)(\d+)\s*([dhms])`)

// ParseDuration sums "<int><unit>" segments (unit in d/h/m/s); the total
// must be strictly positive. Unlike pkg/podspec.ParseDuration this does
// not reject trailing garbage between segments, matching original's
// regexp.finditer scan that silently skips unrecognized characters.
func ParseDuration(text string) (time.Duration, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &apperr.BadSpecError{Field: "duration", Input: text, Reason: "empty"}
	}

	var total time.Duration
	for _, m := range durationSegmentRE.FindAllStringSubmatch(trimmed, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &apperr.BadSpecError{Field: "duration", Input: text, Reason: "segment is not an integer"}
		}
		switch strings.ToLower(m[2]) {
		case "d":
			total += time.Duration(n) * 24 * time.Hour
		case "h":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		case "s":
			total += time.Duration(n) * time.Second
		}
	}

	if total <= 0 {
		return 0, &apperr.BadSpecError{Field: "duration", Input: text, Reason: "must be strictly positive"}
	}
	return total, nil
}
