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

/*
Package cli provides the root command for glidectl.

It creates the Cobra root, registers the global flags and handles exit
codes. Commands live in the internal/commands subpackages.

# Command Tree

	glidectl
	├── run           Run a Glide operation over items
	├── options       List dropdown options (apps, tables, columns, rows)
	├── operations    Show the operation catalog and node description
	├── tables        Run SQL queries and batched mutations
	├── credentials   List, describe and test credential types
	├── secrets       Store API tokens
	├── config        View and edit settings.yaml
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable debug logging
	--json           Output in JSON format
	--config         Path to settings file

# Exit Codes

  - 0: Success
  - 1: Execution failed
  - 2: Invalid input
  - 3: Configuration error
  - 4: Credential error
*/
package cli
