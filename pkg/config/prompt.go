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

package config

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// PromptAPIKey reads a hidden line from stdin, used as the last resort
// in ResolveAPIKey's lookup chain. No third-party prompt library is
// introduced for this: golang.org/x/term's raw-mode read is what the
// pack's own credential-prompt call sites already reach for.
func PromptAPIKey() (string, error) {
	fmt.Print("Enter RunPod API key: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
