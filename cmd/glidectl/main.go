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

package main

import (
	"github.com/tombee/conductor-glide/internal/cli"
	"github.com/tombee/conductor-glide/internal/commands/config"
	"github.com/tombee/conductor-glide/internal/commands/credentials"
	"github.com/tombee/conductor-glide/internal/commands/operations"
	"github.com/tombee/conductor-glide/internal/commands/options"
	"github.com/tombee/conductor-glide/internal/commands/run"
	"github.com/tombee/conductor-glide/internal/commands/secrets"
	"github.com/tombee/conductor-glide/internal/commands/tables"
	versioncmd "github.com/tombee/conductor-glide/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(options.NewCommand())
	rootCmd.AddCommand(operations.NewCommand())
	rootCmd.AddCommand(tables.NewCommand())

	rootCmd.AddCommand(credentials.NewCommand())
	rootCmd.AddCommand(secrets.NewCommand())
	rootCmd.AddCommand(config.NewCommand())

	rootCmd.AddCommand(versioncmd.NewCommand())
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
