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

// Package secrets implements the 'secrets' command group for storing API
// tokens in the system keychain.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/secrets"
)

var (
	secretBackend string
	secretUnmask  bool
	secretForce   bool
)

// newResolver is replaced in tests.
var newResolver = func() *secrets.Resolver {
	return secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend())
}

// NewCommand creates the secrets command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage API tokens",
		Long: `Manage API tokens for the Glide and Shippo credentials.

Tokens are looked up in order:
  1. Environment (read-only): GLIDECTL_SECRET_<KEY>, GLIDE_API_TOKEN, SHIPPO_API_TOKEN
  2. System keychain (macOS Keychain, Linux Secret Service, Windows Credential Manager)

Well-known keys:
  ` + secrets.GlideTokenKey + `
  ` + secrets.ShippoTokenKey + `

Examples:
  glidectl secrets set glide/api_token
  echo "$TOKEN" | glidectl secrets set shippo/api_token
  glidectl secrets list`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a token",
		Long: `Store a token in the keychain. The value is read from stdin when it
is piped, otherwise from a hidden prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: runSet,
	}
	cmd.Flags().StringVar(&secretBackend, "backend", "", "Target backend (keychain)")
	return cmd
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a token (masked by default)",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}
	cmd.Flags().BoolVar(&secretUnmask, "unmask", false, "Show the full value")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List token keys and where they come from",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a token",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
	cmd.Flags().StringVar(&secretBackend, "backend", "", "Target backend (keychain)")
	cmd.Flags().BoolVar(&secretForce, "force", false, "Skip confirmation prompt")
	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := validateKey(key); err != nil {
		return shared.NewInvalidInputError("invalid secret key", err)
	}

	value, err := readValue(cmd.InOrStdin(), key)
	if err != nil {
		return fmt.Errorf("failed to read secret value: %w", err)
	}
	if value == "" {
		return shared.NewInvalidInputError("secret value cannot be empty", nil)
	}

	resolver := newResolver()
	if err := resolver.Set(context.Background(), key, value, secretBackend); err != nil {
		if errors.Is(err, secrets.ErrBackendUnavailable) {
			return fmt.Errorf("keychain unavailable: %w\n\nSet the token in the environment instead:\n  export GLIDECTL_SECRET_%s=<value>",
				err, strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(key)))
		}
		return fmt.Errorf("failed to set secret: %w", err)
	}

	backend := secretBackend
	if backend == "" {
		for _, b := range resolver.Backends() {
			if ro, ok := b.(secrets.ReadOnlyBackend); !ok || !ro.ReadOnly() {
				backend = b.Name()
				break
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Stored %s in %s", key, backend)))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value, err := newResolver().Get(context.Background(), key)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return fmt.Errorf("secret not found: %q\n\nSet it with: glidectl secrets set %s", key, key)
		}
		return fmt.Errorf("failed to get secret: %w", err)
	}

	if secretUnmask {
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", maskSecret(value), shared.RenderLabel("(use --unmask to show full value)"))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	metadata, err := newResolver().List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), metadata)
	}

	if len(metadata) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No secrets found")
		return nil
	}

	rows := make([][]string, 0, len(metadata))
	for _, m := range metadata {
		readOnly := "no"
		if m.ReadOnly {
			readOnly = "yes"
		}
		rows = append(rows, []string{m.Key, m.Backend, readOnly})
	}
	fmt.Fprint(cmd.OutOrStdout(), shared.RenderTable([]string{"KEY", "BACKEND", "READ-ONLY"}, rows))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]

	if !secretForce {
		if shared.IsNonInteractive() {
			return shared.NewInvalidInputError("refusing to delete without --force in non-interactive mode", nil)
		}
		var confirmed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete secret %q?", key)).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion canceled")
			return nil
		}
	}

	if err := newResolver().Delete(context.Background(), key, secretBackend); err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return fmt.Errorf("secret not found: %q", key)
		}
		if errors.Is(err, secrets.ErrReadOnlyBackend) {
			return errors.New("cannot delete from read-only backend (environment variables)")
		}
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Deleted %s", key)))
	return nil
}

// readValue reads piped input, or prompts with masked input on a terminal.
func readValue(in io.Reader, key string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var value string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Value for %s:", key)).
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("value is required")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return "", err
		}
		return strings.TrimSpace(value), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

func validateKey(key string) error {
	switch {
	case key == "":
		return errors.New("secret key cannot be empty")
	case strings.ContainsAny(key, " \t\n"):
		return errors.New("secret key cannot contain whitespace")
	case strings.Contains(key, "\\"):
		return errors.New("secret key should use forward slashes (/), not backslashes")
	}
	return nil
}
