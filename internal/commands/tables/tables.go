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

// Package tables implements the 'tables' command: raw SQL queries and
// batched mutations against a Glide app, outside the node's operations.
package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/integration/glide"
)

// NewCommand creates the tables command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Query and mutate Glide tables directly",
		Long: `Run SQL queries and batched mutations against a Glide app.

Both subcommands send a single request and print the service's response
as JSON.`,
	}

	cmd.AddCommand(newSQLCommand())
	cmd.AddCommand(newMutateCommand())
	return cmd
}

func newSQLCommand() *cobra.Command {
	var (
		app  string
		args []string
	)

	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run a SQL query against the app's Big Tables",
		Long: `Run a SQL query and print the first page of rows.

Positional parameters ($1, $2, ...) are bound from --arg in order. Each
value is parsed as a YAML scalar, so 40 is a number and true a boolean;
quote a value to keep it a string.

Examples:
  glidectl tables sql 'SELECT * FROM "native-table-1" WHERE "Age" > $1' --arg 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			params, err := parseArgs(args)
			if err != nil {
				return shared.NewInvalidInputError("invalid --arg", err)
			}

			return withClient(cmd, app, func(ctx context.Context, client *glide.Client) error {
				result, err := client.QuerySQL(ctx, positional[0], params)
				if err != nil {
					return shared.NewExecutionError("query failed", err)
				}
				return shared.EmitJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "Glide app ID (default: glide.app_id from settings)")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "Query parameter (repeatable, bound in order)")
	return cmd
}

func newMutateCommand() *cobra.Command {
	var (
		app  string
		file string
	)

	cmd := &cobra.Command{
		Use:   "mutate",
		Short: "Send a batch of row mutations in one request",
		Long: `Send a JSON array of mutations in a single request.

Each mutation has a kind (add-row-to-table, set-columns-in-row or
delete-row), a tableName (table ID), a rowID or rowIndex where the kind
needs one, and columnValues. Errors reported for individual mutations
fail the command after the results are printed.

Examples:
  glidectl tables mutate --file mutations.json
  echo '[{"kind":"delete-row","tableName":"native-table-1","rowID":"r1"}]' | glidectl tables mutate --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mutations, err := readMutations(cmd.InOrStdin(), file)
			if err != nil {
				return shared.NewInvalidInputError("invalid mutations", err)
			}

			return withClient(cmd, app, func(ctx context.Context, client *glide.Client) error {
				results, err := client.RunMutations(ctx, mutations)
				if err != nil {
					return shared.NewExecutionError("mutations failed", err)
				}
				if err := shared.EmitJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
				if errs := glide.ExtractMutationErrors(results); len(errs) > 0 {
					return shared.NewExecutionError(fmt.Sprintf("%d mutation(s) reported errors", len(errs)), errors.New(strings.Join(errs, "; ")))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "Glide app ID (default: glide.app_id from settings)")
	cmd.Flags().StringVar(&file, "file", "", `Mutations file (JSON array), or "-" for stdin (required)`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// withClient opens a session and binds a client to app, falling back to
// the configured app.
func withClient(cmd *cobra.Command, app string, fn func(context.Context, *glide.Client) error) error {
	ctx := cmd.Context()

	session, err := shared.NewSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close(context.Background())

	integration, err := session.Glide(ctx)
	if err != nil {
		return err
	}

	if app == "" {
		app = session.Config.Glide.AppID
	}
	client, err := glide.NewClient(integration.Service(), app, session.Logger)
	if err != nil {
		return shared.NewInvalidInputError("no app selected; pass --app or set glide.app_id", err)
	}
	return fn(ctx, client)
}

func parseArgs(raw []string) ([]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make([]interface{}, 0, len(raw))
	for i, s := range raw {
		var v interface{}
		if err := yaml.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		switch v.(type) {
		case []interface{}, map[string]interface{}:
			return nil, fmt.Errorf("argument %d: must be a scalar", i+1)
		}
		params = append(params, v)
	}
	return params, nil
}

func readMutations(stdin io.Reader, path string) ([]glide.Mutation, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var mutations []glide.Mutation
	if err := dec.Decode(&mutations); err != nil {
		return nil, fmt.Errorf("expected a JSON array of mutations: %w", err)
	}
	if len(mutations) == 0 {
		return nil, fmt.Errorf("no mutations given")
	}
	for i, m := range mutations {
		if m.Kind == "" || m.TableName == "" {
			return nil, fmt.Errorf("mutation %d: kind and tableName are required", i)
		}
	}
	return mutations, nil
}
