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

// Package sshconfig edits the user's SSH client config file in place,
// touching only the stanzas it owns. Ownership is identified by a
// marker comment line inside a Host stanza; every other byte in the
// file is preserved exactly, including stanzas a human maintains by
// hand.
package sshconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/fsutil"
)

// MarkerPrefix opens the comment line that marks a Host stanza as
// owned by rpod. The full line is "    # rp:managed alias=<a> pod_id=<p> updated=<ts>".
const MarkerPrefix = "# rp:managed"

var hostLineRE = regexp.MustCompile(`^\s*Host\s+(.+)$`)

// block is one Host stanza as found in the file, in line-range form.
type block struct {
	start, end int // [start, end) over the lines slice
	hosts      []string
	managed    bool
}

func parseBlocks(lines []string) []block {
	var blocks []block
	i := 0
	for i < len(lines) {
		m := hostLineRE.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		start := i
		i++
		for i < len(lines) && !hostLineRE.MatchString(lines[i]) {
			i++
		}
		end := i

		managed := false
		for j := start + 1; j < end; j++ {
			if strings.HasPrefix(strings.TrimSpace(lines[j]), MarkerPrefix) {
				managed = true
				break
			}
		}

		blocks = append(blocks, block{
			start:   start,
			end:     end,
			hosts:   strings.Fields(m[1]),
			managed: managed,
		})
	}
	return blocks
}

func hasHost(hosts []string, alias string) bool {
	for _, h := range hosts {
		if h == alias {
			return true
		}
	}
	return false
}

// Editor edits a single SSH config file.
type Editor struct {
	path string
}

// New returns an editor for the given SSH config path, typically
// ~/.ssh/config.
func New(path string) *Editor {
	return &Editor{path: path}
}

func (e *Editor) readLines() ([]string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &apperr.IOError{Path: e.path, Err: err}
	}
	return splitLinesKeepEnds(string(data)), nil
}

func (e *Editor) writeLines(lines []string) error {
	if err := fsutil.EnsureDir(filepath.Dir(e.path)); err != nil {
		return &apperr.IOError{Path: e.path, Err: err}
	}
	data := strings.Join(lines, "")
	if err := fsutil.WriteFileAtomic(e.path, []byte(data), 0o644); err != nil {
		return &apperr.IOError{Path: e.path, Err: err}
	}
	return nil
}

// splitLinesKeepEnds splits s into lines, each retaining its trailing
// "\n" (the last line keeps none if s doesn't end in one). Mirrors
// Python's file.readlines() semantics that original's line-based editor
// relies on.
func splitLinesKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func buildMarker(alias, podID string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05Z")
	return fmt.Sprintf("    %s alias=%s pod_id=%s updated=%s\n", MarkerPrefix, alias, podID, ts)
}

func renderBlock(alias, podID, hostname string, port int, now time.Time) []string {
	return []string{
		fmt.Sprintf("Host %s\n", alias),
		buildMarker(alias, podID, now),
		fmt.Sprintf("    HostName %s\n", hostname),
		"    User root\n",
		fmt.Sprintf("    Port %s\n", strconv.Itoa(port)),
		"    IdentitiesOnly yes\n",
		"    IdentityFile ~/.ssh/runpod\n",
	}
}

// Upsert locates the stanza (managed or not) whose first host token is
// alias and replaces it wholesale with a freshly rendered managed
// block. If no such stanza exists, the block is appended, preceded by
// a blank line unless the file already ends in one. Two sequential
// Upserts for the same alias leave exactly one block.
func (e *Editor) Upsert(alias, podID, hostname string, port int) error {
	lines, err := e.readLines()
	if err != nil {
		return err
	}

	blocks := parseBlocks(lines)
	newBlock := renderBlock(alias, podID, hostname, port, time.Now())

	for _, b := range blocks {
		if len(b.hosts) > 0 && b.hosts[0] == alias {
			out := make([]string, 0, len(lines)-(b.end-b.start)+len(newBlock))
			out = append(out, lines[:b.start]...)
			out = append(out, newBlock...)
			out = append(out, lines[b.end:]...)
			return e.writeLines(out)
		}
	}

	out := append([]string{}, lines...)
	if n := len(out); n > 0 && !strings.HasSuffix(out[n-1], "\n") {
		out[n-1] += "\n"
	}
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "\n")
	}
	out = append(out, newBlock...)
	return e.writeLines(out)
}

// Remove deletes every managed stanza listing alias among its host
// tokens. Non-managed stanzas sharing the name are never touched. It
// returns the number of stanzas removed.
func (e *Editor) Remove(alias string) (int, error) {
	lines, err := e.readLines()
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	blocks := parseBlocks(lines)
	var ranges [][2]int
	for _, b := range blocks {
		if b.managed && hasHost(b.hosts, alias) {
			ranges = append(ranges, [2]int{b.start, b.end})
		}
	}
	if len(ranges) == 0 {
		return 0, nil
	}

	return len(ranges), e.writeLines(deleteRanges(lines, ranges))
}

// Prune deletes every managed stanza whose host tokens are disjoint
// from validAliases. It returns the number of stanzas removed.
func (e *Editor) Prune(validAliases map[string]struct{}) (int, error) {
	lines, err := e.readLines()
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	blocks := parseBlocks(lines)
	var ranges [][2]int
	for _, b := range blocks {
		if !b.managed {
			continue
		}
		keep := false
		for _, h := range b.hosts {
			if _, ok := validAliases[h]; ok {
				keep = true
				break
			}
		}
		if !keep {
			ranges = append(ranges, [2]int{b.start, b.end})
		}
	}
	if len(ranges) == 0 {
		return 0, nil
	}

	return len(ranges), e.writeLines(deleteRanges(lines, ranges))
}

func deleteRanges(lines []string, ranges [][2]int) []string {
	out := make([]string, 0, len(lines))
	cur := 0
	for _, r := range ranges {
		out = append(out, lines[cur:r[0]]...)
		cur = r[1]
	}
	out = append(out, lines[cur:]...)
	return out
}
