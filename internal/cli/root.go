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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-glide/internal/commands/shared"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for glidectl.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glidectl",
		Short: "glidectl - Glide tables from the command line",
		Long: `glidectl runs Glide tables operations the way a workflow node does:
items in, one result per item out. It also lists the dropdown options a
node editor would offer and manages the credentials the node uses.

Run 'glidectl operations' to see what can be run.
Run 'glidectl credentials test glide' to check a token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to settings file (default: ~/.config/glidectl/settings.yaml)")

	return cmd
}

// HandleExitError prints err and exits with its exit code.
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
