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
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/gpupodctl/rpod/pkg/apperr"
	"github.com/gpupodctl/rpod/pkg/fsutil"
)

const launchdLabel = "com.rpod.scheduler"

// renderPlist speaks the literal Apple property-list DTD a launchd
// agent needs by hand, via encoding/xml's escaper: no plist library
// appears anywhere in the example pack, so this avoids introducing a
// dependency the corpus never reaches for.

// AgentConfig describes the fields InstallAgent needs to render the
// launchd plist and run the agent once it is installed.
type AgentConfig struct {
	ProgramArguments []string
	EnvironmentVars  map[string]string
	LogFile          string
	PlistPath        string
}

func renderPlist(cfg AgentConfig) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<!DOCTYPE plist PUBLIC \"-//Apple//DTD PLIST 1.0//EN\" \"http://www.apple.com/DTDs/PropertyList-1.0.dtd\">\n")
	buf.WriteString("<plist version=\"1.0\">\n<dict>\n")

	writeKV(&buf, "Label", launchdLabel)
	writeArrayKV(&buf, "ProgramArguments", cfg.ProgramArguments)
	writeIntKV(&buf, "StartInterval", 60)
	writeBoolKV(&buf, "RunAtLoad", true)
	writeKV(&buf, "StandardOutPath", cfg.LogFile)
	writeKV(&buf, "StandardErrorPath", cfg.LogFile)
	writeDictKV(&buf, "EnvironmentVariables", cfg.EnvironmentVars)

	buf.WriteString("</dict>\n</plist>\n")
	return buf.Bytes()
}

func writeKV(buf *bytes.Buffer, key, value string) {
	fmt.Fprintf(buf, "  <key>%s</key>\n  <string>%s</string>\n", xmlEscape(key), xmlEscape(value))
}

func writeIntKV(buf *bytes.Buffer, key string, value int) {
	fmt.Fprintf(buf, "  <key>%s</key>\n  <integer>%d</integer>\n", xmlEscape(key), value)
}

func writeBoolKV(buf *bytes.Buffer, key string, value bool) {
	tag := "false"
	if value {
		tag = "true"
	}
	fmt.Fprintf(buf, "  <key>%s</key>\n  <%s/>\n", xmlEscape(key), tag)
}

func writeArrayKV(buf *bytes.Buffer, key string, values []string) {
	fmt.Fprintf(buf, "  <key>%s</key>\n  <array>\n", xmlEscape(key))
	for _, v := range values {
		fmt.Fprintf(buf, "    <string>%s</string>\n", xmlEscape(v))
	}
	buf.WriteString("  </array>\n")
}

func writeDictKV(buf *bytes.Buffer, key string, values map[string]string) {
	fmt.Fprintf(buf, "  <key>%s</key>\n  <dict>\n", xmlEscape(key))
	for k, v := range values {
		fmt.Fprintf(buf, "    <key>%s</key>\n    <string>%s</string>\n", xmlEscape(k), xmlEscape(v))
	}
	buf.WriteString("  </dict>\n")
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// InstallAgent writes the launchd plist (only when its content differs
// from what's on disk) and loads it via launchctl, mirroring original's
// ensure_launchd_scheduler_installed. On any host other than Darwin this
// is a documented no-op that returns *apperr.UnsupportedError for the
// caller to log and continue past.
func InstallAgent(cfg AgentConfig) error {
	if runtime.GOOS != "darwin" {
		return &apperr.UnsupportedError{Op: "scheduler.InstallAgent", Reason: "launchd agents are only installed on Darwin"}
	}

	rendered := renderPlist(cfg)

	needWrite := true
	if existing, err := os.ReadFile(cfg.PlistPath); err == nil {
		needWrite = !bytes.Equal(existing, rendered)
	}

	if needWrite {
		if err := fsutil.EnsureDir(filepath.Dir(cfg.PlistPath)); err != nil {
			return &apperr.IOError{Path: cfg.PlistPath, Err: err}
		}
		if err := fsutil.WriteFileAtomic(cfg.PlistPath, rendered, 0o644); err != nil {
			return &apperr.IOError{Path: cfg.PlistPath, Err: err}
		}
	}

	uid := os.Getuid()
	labelPath := fmt.Sprintf("gui/%d/%s", uid, launchdLabel)
	domain := fmt.Sprintf("gui/%d", uid)

	alreadyLoaded := exec.Command("launchctl", "print", labelPath).Run() == nil

	switch {
	case needWrite && alreadyLoaded:
		_ = exec.Command("launchctl", "bootout", labelPath).Run()
		_ = exec.Command("launchctl", "bootstrap", domain, cfg.PlistPath).Run()
	case !alreadyLoaded:
		_ = exec.Command("launchctl", "bootstrap", domain, cfg.PlistPath).Run()
	}
	_ = exec.Command("launchctl", "kickstart", "-k", labelPath).Run()

	return nil
}
