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

// Package credentials implements the 'credentials' command group.
package credentials

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/credential"
)

// NewCommand creates the credentials command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Inspect and test API credentials",
		Long: `Inspect and test the credential types used by the Glide node.

Credential types: ` + strings.Join(credential.Names(), ", ") + `

Tokens are resolved from settings (glide.token_ref, shippo.token_ref),
which default to the secret keys glide/api_token and shippo/api_token.`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDescribeCommand())
	cmd.AddCommand(newTestCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credential types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := credential.Names()
			descs := make([]*credential.Descriptor, 0, len(names))
			for _, name := range names {
				d, err := credential.Lookup(name)
				if err != nil {
					return err
				}
				descs = append(descs, d)
			}

			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), descs)
			}

			rows := make([][]string, 0, len(descs))
			for i, d := range descs {
				rows = append(rows, []string{names[i], d.Name, d.DisplayName})
			}
			fmt.Fprint(cmd.OutOrStdout(), shared.RenderTable([]string{"ALIAS", "TYPE", "NAME"}, rows))
			return nil
		},
	}
}

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "describe <type>",
		Short:     "Show the fields and test request of a credential type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: credential.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := credential.Lookup(args[0])
			if err != nil {
				return shared.NewInvalidInputError("unknown credential type", err)
			}
			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), describeJSON(d))
			}
			describeText(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

type descriptorOutput struct {
	*credential.Descriptor
	BaseURLs map[credential.Environment]string `json:"baseUrls"`
}

func describeJSON(d *credential.Descriptor) descriptorOutput {
	return descriptorOutput{Descriptor: d, BaseURLs: d.BaseURLs()}
}

func describeText(w io.Writer, d *credential.Descriptor) {
	fmt.Fprintln(w, shared.Header.Render(d.DisplayName))
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Type:"), d.Name)
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Docs:"), d.DocumentationURL)
	fmt.Fprintf(w, "%s %s %s\n\n", shared.RenderLabel("Test:"), d.Probe.Method, d.Probe.Path)

	rows := make([][]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		rows = append(rows, []string{f.Name, string(f.Type), strconv.FormatBool(f.Required), f.Default})
	}
	fmt.Fprint(w, shared.RenderTable([]string{"FIELD", "TYPE", "REQUIRED", "DEFAULT"}, rows))

	urls := d.BaseURLs()
	envs := make([]string, 0, len(urls))
	for env := range urls {
		envs = append(envs, string(env))
	}
	sort.Strings(envs)
	fmt.Fprintln(w)
	for _, env := range envs {
		fmt.Fprintf(w, "%s %s\n", shared.RenderLabel(env+":"), urls[credential.Environment(env)])
	}
}

type testResult struct {
	Credential  string `json:"credential"`
	Environment string `json:"environment"`
	BaseURL     string `json:"baseUrl"`
	OK          bool   `json:"ok"`
}

func newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <type>",
		Short: "Check a credential against its service",
		Long: `Send the credential type's lightweight test request using the
configured token. Exits non-zero when the service rejects the token.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: credential.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := shared.NewSession(ctx)
			if err != nil {
				return err
			}
			defer session.Close(context.Background())

			conn, err := session.Connection(ctx, args[0])
			if err != nil {
				return err
			}
			tr, err := conn.Transport(session.Logger)
			if err != nil {
				return shared.NewCredentialError("failed to create transport", err)
			}

			if err := conn.Descriptor.Test(ctx, tr, conn.Credential); err != nil {
				return shared.NewCredentialError("credential test failed", err)
			}

			res := testResult{
				Credential:  conn.Descriptor.Name,
				Environment: string(conn.Credential.Environment()),
				BaseURL:     tr.BaseURL(),
				OK:          true,
			}
			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("%s credential is valid (%s, %s)",
				conn.Descriptor.DisplayName, res.Environment, res.BaseURL)))
			return nil
		},
	}
}
