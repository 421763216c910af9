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

// Package apperr defines the typed errors rpod's core packages raise.
// The command layer prints their messages and, where it must tell one
// kind from another, matches them with errors.As; every other caller
// should treat them as opaque errors.
package apperr

import (
	"fmt"
	"strings"
)

// AliasNotFoundError is raised when a command references an alias that is
// not in the store. Candidates lists the aliases that do exist, so the
// command layer can suggest one.
type AliasNotFoundError struct {
	Alias      string
	Candidates []string
}

func (e *AliasNotFoundError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("unknown alias %q (no aliases configured)", e.Alias)
	}
	return fmt.Sprintf("unknown alias %q (available: %s)", e.Alias, strings.Join(e.Candidates, ", "))
}

// AliasExistsError is raised by add/create when an alias is already taken
// and the caller did not pass force.
type AliasExistsError struct {
	Alias string
}

func (e *AliasExistsError) Error() string {
	return fmt.Sprintf("alias %q already exists (use --force to overwrite)", e.Alias)
}

// TemplateNotFoundError mirrors AliasNotFoundError for templates.
type TemplateNotFoundError struct {
	ID string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("unknown template %q", e.ID)
}

// TemplateExistsError mirrors AliasExistsError for templates.
type TemplateExistsError struct {
	ID string
}

func (e *TemplateExistsError) Error() string {
	return fmt.Sprintf("template %q already exists (use --force to overwrite)", e.ID)
}

// BadSpecError is raised when a GPU spec, storage spec, duration, or time
// string fails to parse. Input is the offending string, Reason is a short
// human explanation.
type BadSpecError struct {
	Field  string
	Input  string
	Reason string
}

func (e *BadSpecError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

// SchedulingConflictError is raised when mutually exclusive scheduling
// flags (--at and --in) are both given.
type SchedulingConflictError struct {
	Flags []string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("mutually exclusive flags given: %s", strings.Join(e.Flags, ", "))
}

// ProviderError wraps a failure returned by the remote pod client. Op
// names the provider operation that failed (e.g. "create_pod").
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NetworkInfoMissingError is raised when a pod has no public SSH port
// after a refetch.
type NetworkInfoMissingError struct {
	Alias string
}

func (e *NetworkInfoMissingError) Error() string {
	return fmt.Sprintf("pod for alias %q has no public SSH endpoint", e.Alias)
}

// IOError wraps an unreadable store or SSH config file. Unlike the other
// kinds this is always fatal to the command that raised it.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError is raised by operations that are a documented no-op on
// the current host, such as installing a periodic agent on a non-Darwin
// platform. Callers are expected to log and continue, not abort.
type UnsupportedError struct {
	Op     string
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s not supported: %s", e.Op, e.Reason)
}
