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

// Package options implements the 'options' command, which prints the
// dropdown choices a workflow editor would show for the Glide node.
package options

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/integration/glide"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

type flags struct {
	app         string
	table       string
	search      string
	limit       int
	confirm     bool
	columnTypes []string
}

// NewCommand creates the options command.
func NewCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "options <method>",
		Short: "List dropdown options for the Glide node",
		Long: fmt.Sprintf(`Load the options a workflow editor shows for a Glide node field.

Methods: %s

Failures never abort the command: they are shown as a single
"Error: ..." option, exactly as the editor would show them.

Examples:
  glidectl options getApps
  glidectl options getTables --app APP_ID
  glidectl options getRows --app APP_ID --table Contacts --search ada --limit 50
  glidectl options getColumns --app APP_ID --table Contacts --column-type text,number
  glidectl options getRowsWithConfirmation --app APP_ID --table Contacts --confirm`,
			strings.Join(glide.LoadOptionsMethods(), ", ")),
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return glide.LoadOptionsMethods(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := shared.NewSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close(context.Background())

			integration, err := session.Glide(cmd.Context())
			if err != nil {
				return err
			}

			if f.app == "" {
				f.app = session.Config.Glide.AppID
			}
			opts := integration.LoadOptions(cmd.Context(), args[0], f.inputs())
			return render(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&f.app, "app", "", "Glide app ID (default: glide.app_id from settings)")
	cmd.Flags().StringVar(&f.table, "table", "", "Table ID or name")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive filter on option names (getRows)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, fmt.Sprintf("Row limit, clamped to %d-%d (default %d)", glide.MinRowLimit, glide.MaxRowLimit, glide.DefaultRowLimit))
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "Confirm row fetching (getRowsWithConfirmation)")
	cmd.Flags().StringSliceVar(&f.columnTypes, "column-type", nil, "Column types to keep: boolean, date, number, text, other (getColumns)")

	return cmd
}

func (f *flags) inputs() map[string]interface{} {
	inputs := map[string]interface{}{
		glide.ParamAppID:           f.app,
		glide.ParamTableName:       f.table,
		glide.ParamRowSearch:       f.search,
		glide.ParamConfirmRowFetch: f.confirm,
	}
	if f.limit != 0 {
		inputs[glide.ParamRowLimit] = f.limit
	}
	if len(f.columnTypes) > 0 {
		inputs[glide.ParamColumnTypeFilter] = f.columnTypes
	}
	return inputs
}

func render(w io.Writer, opts []api.Option) error {
	if shared.GetJSON() {
		return shared.EmitJSON(w, opts)
	}

	if len(opts) == 0 {
		fmt.Fprintln(w, shared.RenderLabel("No options"))
		return nil
	}

	rows := make([][]string, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []string{o.Name, shared.FormatValue(o.Value)})
	}
	fmt.Fprint(w, shared.RenderTable([]string{"NAME", "VALUE"}, rows))
	return nil
}
