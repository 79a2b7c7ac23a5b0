// Copyright 2025 Tom Barlow
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

package shared

import (
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether prompts must be avoided: when
// GLIDECTL_NON_INTERACTIVE=true, in CI, or when stdin is not a terminal.
func IsNonInteractive() bool {
	if os.Getenv("GLIDECTL_NON_INTERACTIVE") == "true" {
		return true
	}
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI"} {
		if val := os.Getenv(v); val == "true" || val == "1" {
			return true
		}
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}
