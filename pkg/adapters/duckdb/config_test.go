package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	off := false

	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr string
	}{
		{name: "no params", input: nil, want: &Params{}},
		{
			name: "extensions and settings",
			input: map[string]any{
				"extensions": []any{"json", "icu"},
				"settings":   map[string]any{"memory_limit": "1GB", "threads": 4},
			},
			want: &Params{
				Extensions: []string{"json", "icu"},
				Settings:   map[string]string{"memory_limit": "1GB", "threads": "4"},
			},
		},
		{
			name: "secret with explicit ssl flag",
			input: map[string]any{
				"secrets": []any{map[string]any{
					"type":      "s3",
					"provider":  "config",
					"endpoint":  "localhost:9000",
					"url_style": "path",
					"use_ssl":   false,
				}},
			},
			want: &Params{Secrets: []SecretConfig{{
				Type: "s3", Provider: "config", Endpoint: "localhost:9000", URLStyle: "path", UseSSL: &off,
			}}},
		},
		{
			name:    "misspelled key is rejected",
			input:   map[string]any{"extentions": []any{"json"}},
			wantErr: "invalid duckdb params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildCreateSecretSQL(t *testing.T) {
	on := true

	tests := []struct {
		name   string
		secret SecretConfig
		want   string
	}{
		{
			name:   "type only",
			secret: SecretConfig{Type: "gcs"},
			want:   "CREATE SECRET (\n    TYPE gcs\n)",
		},
		{
			name:   "credential chain with one scope",
			secret: SecretConfig{Type: "s3", Provider: "credential_chain", Region: "eu-west-1", Scope: "s3://lake"},
			want: "CREATE SECRET (\n    TYPE s3,\n    PROVIDER credential_chain,\n" +
				"    REGION 'eu-west-1',\n    SCOPE 's3://lake'\n)",
		},
		{
			name:   "several scopes",
			secret: SecretConfig{Type: "s3", Scope: []any{"s3://a", "s3://b"}},
			want:   "CREATE SECRET (\n    TYPE s3,\n    SCOPE ('s3://a', 's3://b')\n)",
		},
		{
			name:   "explicit keys are quoted",
			secret: SecretConfig{Type: "r2", KeyID: "key", Secret: "it's", UseSSL: &on},
			want:   "CREATE SECRET (\n    TYPE r2,\n    KEY_ID 'key',\n    SECRET 'it''s',\n    USE_SSL true\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCreateSecretSQL(tt.secret))
		})
	}
}

func TestScopeList(t *testing.T) {
	assert.Nil(t, scopeList(nil))
	assert.Nil(t, scopeList(""))
	assert.Equal(t, []string{"s3://a"}, scopeList("s3://a"))
	assert.Equal(t, []string{"s3://a", "s3://b"}, scopeList([]string{"s3://a", "s3://b"}))
	assert.Equal(t, []string{"s3://a", "7"}, scopeList([]any{"s3://a", 7}))
}
