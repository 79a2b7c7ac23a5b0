package secrets

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func fakeEnv(vars map[string]string) *EnvBackend {
	return &EnvBackend{
		lookup: func(name string) (string, bool) {
			v, ok := vars[name]
			return v, ok
		},
		environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
}

func TestEnvBackend_Get(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		vars      map[string]string
		wantValue string
		wantErr   error
	}{
		{
			name:      "prefixed variable",
			key:       GlideTokenKey,
			vars:      map[string]string{"GLIDECTL_SECRET_GLIDE_API_TOKEN": "prefixed"},
			wantValue: "prefixed",
		},
		{
			name:      "service alias",
			key:       ShippoTokenKey,
			vars:      map[string]string{"SHIPPO_API_TOKEN": "shippo_test_abc"},
			wantValue: "shippo_test_abc",
		},
		{
			name: "prefixed wins over alias",
			key:  GlideTokenKey,
			vars: map[string]string{
				"GLIDECTL_SECRET_GLIDE_API_TOKEN": "prefixed",
				"GLIDE_API_TOKEN":                 "alias",
			},
			wantValue: "prefixed",
		},
		{
			name:      "custom key",
			key:       "work/glide-token",
			vars:      map[string]string{"GLIDECTL_SECRET_WORK_GLIDE_TOKEN": "custom"},
			wantValue: "custom",
		},
		{
			name:    "empty value is not found",
			key:     GlideTokenKey,
			vars:    map[string]string{"GLIDE_API_TOKEN": ""},
			wantErr: ErrSecretNotFound,
		},
		{
			name:    "not set",
			key:     GlideTokenKey,
			vars:    map[string]string{},
			wantErr: ErrSecretNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fakeEnv(tt.vars).Get(context.Background(), tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.wantValue {
				t.Errorf("Get() = %q, want %q", got, tt.wantValue)
			}
		})
	}
}

func TestEnvBackend_ReadOnly(t *testing.T) {
	b := NewEnvBackend()
	if err := b.Set(context.Background(), GlideTokenKey, "x"); !errors.Is(err, ErrReadOnlyBackend) {
		t.Errorf("Set() error = %v, want ErrReadOnlyBackend", err)
	}
	if err := b.Delete(context.Background(), GlideTokenKey); !errors.Is(err, ErrReadOnlyBackend) {
		t.Errorf("Delete() error = %v, want ErrReadOnlyBackend", err)
	}
	if !b.ReadOnly() || !b.Available() || b.Priority() != EnvBackendPriority {
		t.Error("unexpected env backend metadata")
	}
}

func TestEnvBackend_List(t *testing.T) {
	b := fakeEnv(map[string]string{
		"GLIDECTL_SECRET_WORK_API_TOKEN": "a",
		"GLIDECTL_SECRET_EMPTY":          "",
		"SHIPPO_API_TOKEN":               "b",
		"PATH":                           "/usr/bin",
	})

	keys, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{ShippoTokenKey, "work/api_token"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("List() = %v, want %v", keys, want)
	}
}

func TestEnvKeyRoundTrip(t *testing.T) {
	if got := normalizeEnvKey("glide/api_token"); got != "GLIDECTL_SECRET_GLIDE_API_TOKEN" {
		t.Errorf("normalizeEnvKey() = %q", got)
	}
	if got := denormalizeEnvKey("GLIDECTL_SECRET_GLIDE_API_TOKEN"); got != "glide/api_token" {
		t.Errorf("denormalizeEnvKey() = %q", got)
	}
}
