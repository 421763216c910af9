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

// Package podspec parses the GPU, storage, and duration strings that
// flow in off the command line into validated value objects. Struct
// tags are checked with go-playground/validator.
package podspec

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gpupodctl/rpod/pkg/apperr"
)

var validate = validator.New()

// GPUSpec is a parsed "<count>x<model>" string, e.g. "2xA100".
type GPUSpec struct {
	Count int    `validate:"gte=1"`
	Model string `validate:"required"`
}

// StorageSpec is a parsed "<n>GB" string.
type StorageSpec struct {
	GB int `validate:"gte=10"`
}

var gpuSpecRE = regexp.MustCompile(`(?i)^(\d+)x([a-z0-9_.\-]+)$`)

// ParseGPUSpec parses strings of the form "<count>x<model>", e.g.
// "1xH100" or "2xA100". A bare model name with no "<n>x" prefix is
// accepted as count=1; "0xA100" is rejected by the count>=1 tag, not by
// a special-case check, since "0x" collides with a plausible count.
func ParseGPUSpec(input string) (GPUSpec, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return GPUSpec{}, &apperr.BadSpecError{Field: "gpu", Input: input, Reason: "empty"}
	}

	spec := GPUSpec{Count: 1, Model: trimmed}
	if m := gpuSpecRE.FindStringSubmatch(trimmed); m != nil {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return GPUSpec{}, &apperr.BadSpecError{Field: "gpu", Input: input, Reason: "count is not an integer"}
		}
		spec = GPUSpec{Count: count, Model: m[2]}
	}
	spec.Model = strings.ToUpper(spec.Model)

	if err := validate.Struct(spec); err != nil {
		return GPUSpec{}, &apperr.BadSpecError{Field: "gpu", Input: input, Reason: err.Error()}
	}
	return spec, nil
}

var storageSpecRE = regexp.MustCompile(`(?i)^(\d+)\s*gb$`)

// ParseStorageSpec parses strings of the form "<n>GB"; n must be at
// least 10.
func ParseStorageSpec(input string) (StorageSpec, error) {
	trimmed := strings.TrimSpace(input)
	m := storageSpecRE.FindStringSubmatch(trimmed)
	if m == nil {
		return StorageSpec{}, &apperr.BadSpecError{Field: "storage", Input: input, Reason: "expected <N>GB"}
	}
	gb, err := strconv.Atoi(m[1])
	if err != nil {
		return StorageSpec{}, &apperr.BadSpecError{Field: "storage", Input: input, Reason: "size is not an integer"}
	}

	spec := StorageSpec{GB: gb}
	if err := validate.Struct(spec); err != nil {
		return StorageSpec{}, &apperr.BadSpecError{Field: "storage", Input: input, Reason: "must be at least 10GB"}
	}
	return spec, nil
}

var durationSegmentRE = regexp.MustCompile(`(?i)(\d+)\s*([dhms])`)

// ParseDuration sums a concatenation of "<int><unit>" segments, unit in
// {d,h,m,s}, e.g. "1d2h30m". The total must be strictly positive.
func ParseDuration(input string) (time.Duration, error) {
	trimmed := strings.TrimSpace(input)
	matches := durationSegmentRE.FindAllStringSubmatch(trimmed, -1)
	if matches == nil {
		return 0, &apperr.BadSpecError{Field: "duration", Input: input, Reason: "expected segments like 1d2h30m"}
	}

	// Reject trailing garbage the regex skipped over, e.g. "5x".
	var rebuilt strings.Builder
	for _, m := range matches {
		rebuilt.WriteString(m[0])
	}
	if !strings.EqualFold(strings.ReplaceAll(trimmed, " ", ""), strings.ReplaceAll(rebuilt.String(), " ", "")) {
		return 0, &apperr.BadSpecError{Field: "duration", Input: input, Reason: "contains unrecognized characters"}
	}

	var total time.Duration
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &apperr.BadSpecError{Field: "duration", Input: input, Reason: "segment is not an integer"}
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
		return 0, &apperr.BadSpecError{Field: "duration", Input: input, Reason: "must be strictly positive"}
	}
	return total, nil
}
