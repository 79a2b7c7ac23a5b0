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

// Package operations implements the 'operations' command, which lists the
// Glide node's resources, operations and parameters.
package operations

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/integration/glide"
	"github.com/tombee/conductor-glide/internal/log"
	"github.com/tombee/conductor-glide/internal/operation/api"
)

// catalog is the metadata side of the node; it never contacts the service.
func catalog() api.TypedProvider {
	return glide.New(nil, log.Discard())
}

// NewCommand creates the operations command.
func NewCommand() *cobra.Command {
	var showNode bool

	cmd := &cobra.Command{
		Use:   "operations [operation]",
		Short: "List node operations or describe one",
		Long: `Without arguments, list every resource/operation of the Glide node.
With an operation name, show its parameters and response fields.

Use --node to print the full node definition (all properties with their
visibility rules) as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if showNode {
				return shared.EmitJSON(w, glide.Description())
			}
			if len(args) == 1 {
				return describe(w, args[0])
			}
			return list(w)
		},
	}
	cmd.Flags().BoolVar(&showNode, "node", false, "Print the node definition as JSON")

	return cmd
}

func list(w io.Writer) error {
	ops := catalog().Operations()
	if shared.GetJSON() {
		return shared.EmitJSON(w, ops)
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{op.Resource, op.Name, op.Description, strings.Join(op.Tags, ",")})
	}
	fmt.Fprint(w, shared.RenderTable([]string{"RESOURCE", "OPERATION", "DESCRIPTION", "TAGS"}, rows))
	return nil
}

func describe(w io.Writer, op string) error {
	schema := catalog().OperationSchema(op)
	if schema == nil {
		return shared.NewInvalidInputError(fmt.Sprintf("unknown operation %q", op), nil)
	}
	if shared.GetJSON() {
		return shared.EmitJSON(w, schema)
	}

	fmt.Fprintf(w, "%s %s\n\n", shared.Header.Render(op), shared.RenderLabel(schema.Description))

	rows := make([][]string, 0, len(schema.Parameters))
	for _, p := range schema.Parameters {
		rows = append(rows, []string{p.Name, p.Type, strconv.FormatBool(p.Required), shared.FormatValue(p.Default), p.LoadOptionsMethod})
	}
	fmt.Fprint(w, shared.RenderTable([]string{"PARAMETER", "TYPE", "REQUIRED", "DEFAULT", "OPTIONS"}, rows))

	if len(schema.ResponseFields) > 0 {
		fmt.Fprintln(w)
		rows = rows[:0]
		for _, f := range schema.ResponseFields {
			rows = append(rows, []string{f.Name, f.Type, f.Description})
		}
		fmt.Fprint(w, shared.RenderTable([]string{"FIELD", "TYPE", "DESCRIPTION"}, rows))
	}
	return nil
}
