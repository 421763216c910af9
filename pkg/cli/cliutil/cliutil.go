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

// Package cliutil holds the small pieces every rpod verb package needs
// (confirmation prompts, table rendering) that would otherwise create
// an import cycle if they lived in pkg/cli itself, since pkg/cli
// imports every verb package to assemble the root command.
package cliutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Confirm prints prompt followed by " (y/N): " and reads a line from
// stdin. Only "y" or "yes" (case-insensitive) count as confirmation.
func Confirm(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// NewTable returns a borderless, non-wrapping tablewriter.Table writing
// to stdout with the given headers, the style rpod's table output shares.
func NewTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	return table
}
