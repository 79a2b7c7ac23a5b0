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

// Package run implements the 'run' command, which executes one Glide node
// operation over a list of input items.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/integration/glide"
	"github.com/tombee/conductor-glide/internal/node"
)

type flags struct {
	resource       string
	operation      string
	itemsPath      string
	params         []string
	app            string
	table          string
	continueOnFail bool
	metricsOut     string
}

// NewCommand creates the run command.
func NewCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a Glide node operation over input items",
		Long: `Execute one resource/operation of the Glide node for each input item
and print one output record per item as JSON.

Items are read from --items (JSON or YAML array; "-" reads stdin). Each
element is either a bare payload or {"json": {...}, "params": {...}},
where params override node parameters for that item only.

Without --continue-on-fail the first failing item aborts the run. With
it, a failing item produces {"error": "<message>"} and processing
continues.

--table takes a table ID; row operations send it to the service
unchanged. List IDs with 'glidectl options getTables'.

Examples:
  glidectl run --operation tableGetAll --app APP_ID
  glidectl run --operation rowGet --table native-table-1 --param rowId=r1
  glidectl run --operation rowCreate --table native-table-1 --param 'rowData={"Name":"Ada"}'
  glidectl run --operation rowUpdate --table native-table-1 --items updates.yaml --continue-on-fail
  glidectl run --operation rowGetAll --table native-table-1 --param 'responseTransform=.rows | length'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd)
		},
	}

	cmd.Flags().StringVar(&f.resource, "resource", "", "Resource: table or row (default: derived from the operation)")
	cmd.Flags().StringVar(&f.operation, "operation", "", "Operation, e.g. rowCreate (required)")
	cmd.Flags().StringVar(&f.itemsPath, "items", "", `Input items file (JSON or YAML), or "-" for stdin`)
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "Node parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&f.app, "app", "", "Glide app ID (default: glide.app_id from settings)")
	cmd.Flags().StringVar(&f.table, "table", "", "Table ID (sets the tableName parameter)")
	cmd.Flags().BoolVar(&f.continueOnFail, "continue-on-fail", false, "Emit an error record for failed items instead of aborting")
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file after the run")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

func (f *flags) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	params, err := ParseParams(f.params)
	if err != nil {
		return shared.NewInvalidInputError("invalid --param", err)
	}

	items, err := f.loadItems(cmd.InOrStdin())
	if err != nil {
		return err
	}

	session, err := shared.NewSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close(context.Background())

	if f.app != "" {
		params[glide.ParamAppID] = f.app
	} else if _, ok := params[glide.ParamAppID]; !ok && session.Config.Glide.AppID != "" {
		params[glide.ParamAppID] = session.Config.Glide.AppID
	}
	if f.table != "" {
		params[glide.ParamTableName] = f.table
	}

	integration, err := session.Glide(ctx)
	if err != nil {
		return err
	}

	runner := node.NewRunner(integration,
		node.WithLogger(session.Logger),
		node.WithTracer(session.Tracing.Tracer()),
		node.WithContinueOnFail(f.continueOnFail),
	)

	outputs, runErr := runner.Run(ctx, node.Request{
		Resource:   f.resource,
		Operation:  f.operation,
		Parameters: params,
		Items:      items,
	})

	if f.metricsOut != "" {
		if err := prometheus.WriteToTextfile(f.metricsOut, prometheus.DefaultGatherer); err != nil {
			session.Logger.Warn("failed to write metrics", "path", f.metricsOut, "error", err)
		}
	}

	if runErr != nil {
		var itemErr *node.ItemError
		if errors.As(runErr, &itemErr) {
			return shared.NewExecutionError(fmt.Sprintf("item %d failed", itemErr.Index), itemErr.Err)
		}
		return shared.NewExecutionError("run failed", runErr)
	}

	return shared.EmitJSON(cmd.OutOrStdout(), outputs)
}

func (f *flags) loadItems(stdin io.Reader) ([]node.Item, error) {
	if f.itemsPath == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if f.itemsPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(f.itemsPath)
	}
	if err != nil {
		return nil, shared.NewInvalidInputError("failed to read items", err)
	}

	items, err := ParseItems(data, formatOf(f.itemsPath))
	if err != nil {
		return nil, shared.NewInvalidInputError("invalid items in "+f.itemsPath, err)
	}
	return items, nil
}

func formatOf(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return formatYAML
	case strings.HasSuffix(lower, ".json"):
		return formatJSON
	default:
		return ""
	}
}
