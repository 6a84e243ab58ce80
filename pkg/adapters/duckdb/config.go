package duckdb

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "spatial", "json")
	Extensions []string `mapstructure:"extensions"`

	// Secrets for cloud storage authentication
	Secrets []SecretConfig `mapstructure:"secrets"`

	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`
}

// SecretConfig defines a DuckDB secret for cloud storage.
type SecretConfig struct {
	// Type: "s3", "gcs", "azure", "r2", "huggingface"
	Type string `mapstructure:"type"`

	// Provider: "config", "credential_chain", "service_account", etc.
	Provider string `mapstructure:"provider"`

	// Region for S3 buckets
	Region string `mapstructure:"region,omitempty"`

	// Scope limits the secret to specific paths (string or []string)
	Scope any `mapstructure:"scope,omitempty"`

	// KeyID for explicit credentials (prefer credential_chain)
	KeyID string `mapstructure:"key_id,omitempty"`

	// Secret for explicit credentials (prefer credential_chain)
	Secret string `mapstructure:"secret,omitempty"`

	// Endpoint for S3-compatible services (MinIO, etc.)
	Endpoint string `mapstructure:"endpoint,omitempty"`

	// URLStyle: "vhost" or "path" for S3
	URLStyle string `mapstructure:"url_style,omitempty"`

	// UseSSL: whether to use HTTPS (default true)
	UseSSL *bool `mapstructure:"use_ssl,omitempty"`
}

// parseParams decodes the free-form params block of a target.
// Scalar settings are converted to strings ("threads: 4" becomes "4").
func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	return p, nil
}

// buildCreateSecretSQL renders a CREATE SECRET statement. Keywords are bare,
// values are single-quoted.
func buildCreateSecretSQL(s SecretConfig) string {
	opts := []string{"TYPE " + s.Type}
	if s.Provider != "" {
		opts = append(opts, "PROVIDER "+s.Provider)
	}
	if s.Region != "" {
		opts = append(opts, "REGION "+quote(s.Region))
	}
	if scope := scopeList(s.Scope); len(scope) == 1 {
		opts = append(opts, "SCOPE "+quote(scope[0]))
	} else if len(scope) > 1 {
		quoted := make([]string, len(scope))
		for i, sc := range scope {
			quoted[i] = quote(sc)
		}
		opts = append(opts, "SCOPE ("+strings.Join(quoted, ", ")+")")
	}
	if s.KeyID != "" {
		opts = append(opts, "KEY_ID "+quote(s.KeyID))
	}
	if s.Secret != "" {
		opts = append(opts, "SECRET "+quote(s.Secret))
	}
	if s.Endpoint != "" {
		opts = append(opts, "ENDPOINT "+quote(s.Endpoint))
	}
	if s.URLStyle != "" {
		opts = append(opts, "URL_STYLE "+quote(s.URLStyle))
	}
	if s.UseSSL != nil {
		opts = append(opts, fmt.Sprintf("USE_SSL %t", *s.UseSSL))
	}
	return "CREATE SECRET (\n    " + strings.Join(opts, ",\n    ") + "\n)"
}

func scopeList(scope any) []string {
	switch v := scope.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
