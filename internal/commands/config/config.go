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

// Package config implements the 'config' command group for viewing and
// editing settings.yaml.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-glide/internal/commands/shared"
	"github.com/tombee/conductor-glide/internal/config"
)

// NewCommand creates the config command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit settings",
		Long: `View and edit glidectl settings (settings.yaml).

Settable keys: ` + strings.Join(settableKeys(), ", "),
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newPathCommand())
	cmd.AddCommand(newSetCommand())

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after defaults and environment overrides.
Token references are shown, never token values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(shared.GetConfigPath())
			if err != nil {
				return shared.NewConfigError("failed to load configuration", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if !shared.GetJSON() {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			// Round-trip through YAML so JSON keys and durations match the file.
			var doc map[string]interface{}
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("failed to convert config: %w", err)
			}
			return shared.EmitJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := shared.GetConfigPath()
			if path == "" {
				var err error
				if path, err = config.SettingsPath(); err != nil {
					return shared.NewConfigError("cannot determine settings path", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting and save settings.yaml. The file is locked while
it is updated and the result is validated before it is written.

Examples:
  glidectl config set glide.app_id APP_ID
  glidectl config set glide.token_ref keychain:work/glide
  glidectl config set shippo.environment live
  glidectl config set tracing.exporter console`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: settableKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := config.NewSettingsFile(shared.GetConfigPath())
			if err != nil {
				return shared.NewConfigError("cannot open settings", err)
			}

			if _, err := sf.Update(func(c *config.Config) error {
				return setKey(c, args[0], args[1])
			}); err != nil {
				return shared.NewConfigError(fmt.Sprintf("failed to set %s", args[0]), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("%s updated in %s", args[0], sf.Path())))
			return nil
		},
	}
}

// setters maps dotted keys to field assignments.
var setters = map[string]func(c *config.Config, v string) error{
	"log.level":          func(c *config.Config, v string) error { c.Log.Level = strings.ToLower(v); return nil },
	"log.format":         func(c *config.Config, v string) error { c.Log.Format = strings.ToLower(v); return nil },
	"glide.base_url":     func(c *config.Config, v string) error { c.Glide.BaseURL = v; return nil },
	"glide.app_id":       func(c *config.Config, v string) error { c.Glide.AppID = v; return nil },
	"glide.environment":  func(c *config.Config, v string) error { c.Glide.Environment = strings.ToLower(v); return nil },
	"glide.token_ref":    func(c *config.Config, v string) error { c.Glide.TokenRef = v; return nil },
	"glide.timeout":      func(c *config.Config, v string) error { return setDuration(&c.Glide.Timeout, v) },
	"glide.rate_limit":   func(c *config.Config, v string) error { return setFloat(&c.Glide.RateLimit, v) },
	"shippo.environment": func(c *config.Config, v string) error { c.Shippo.Environment = strings.ToLower(v); return nil },
	"shippo.token_ref":   func(c *config.Config, v string) error { c.Shippo.TokenRef = v; return nil },
	"shippo.timeout":     func(c *config.Config, v string) error { return setDuration(&c.Shippo.Timeout, v) },
	"tracing.exporter":   func(c *config.Config, v string) error { c.Tracing.Exporter = strings.ToLower(v); return nil },
	"tracing.endpoint":   func(c *config.Config, v string) error { c.Tracing.Endpoint = v; return nil },
	"tracing.insecure": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("tracing.insecure must be true or false")
		}
		c.Tracing.Insecure = b
		return nil
	},
}

func settableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setKey(c *config.Config, key, value string) error {
	if strings.HasPrefix(key, "shippo.base_urls.") {
		env := strings.TrimPrefix(key, "shippo.base_urls.")
		if c.Shippo.BaseURLs == nil {
			c.Shippo.BaseURLs = map[string]string{}
		}
		if value == "" {
			delete(c.Shippo.BaseURLs, env)
			return nil
		}
		c.Shippo.BaseURLs[env] = value
		return nil
	}

	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key %q (settable: %s, shippo.base_urls.<env>)", key, strings.Join(settableKeys(), ", "))
	}
	return set(c, value)
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q", v)
	}
	*dst = d
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", v)
	}
	*dst = f
	return nil
}
