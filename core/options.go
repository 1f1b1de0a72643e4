package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

// ConfigProvider loads configuration values over the supplied defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader sources unresolved configuration values, typically from the
// process environment.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded, and runtime configuration layers.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	out := map[string]any{}
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvRawConfigLoader maps process environment variables onto the raw
// configuration tree. Lookup defaults to os.LookupEnv via the caller.
type EnvRawConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.Lookup == nil {
		return map[string]any{}, nil
	}
	raw := map[string]any{}
	httpValues := map[string]any{}
	dbValues := map[string]any{}

	if value, ok := l.Lookup("SERVICE_NAME"); ok {
		raw["service_name"] = strings.TrimSpace(value)
	}
	if value, ok := l.Lookup("ENCRYPTION_KEY"); ok {
		raw["encryption_key"] = strings.TrimSpace(value)
	}
	if value, ok := l.Lookup("CREDENTIALS_REFRESH_HOOK"); ok {
		raw["refresh_hook"] = strings.TrimSpace(value)
	}
	if value, ok := l.Lookup("HTTP_ADDR"); ok {
		httpValues["addr"] = strings.TrimSpace(value)
	}
	if value, ok := l.Lookup("ALLOWED_ORIGINS"); ok {
		httpValues["allowed_origins"] = splitList(value)
	}
	if value, ok := l.Lookup("DATABASE_DRIVER"); ok {
		dbValues["driver"] = strings.TrimSpace(value)
	}
	if value, ok := l.Lookup("DATABASE_URL"); ok {
		dbValues["dsn"] = strings.TrimSpace(value)
	}

	if len(httpValues) > 0 {
		raw["http"] = httpValues
	}
	if len(dbValues) > 0 {
		raw["database"] = dbValues
	}
	return raw, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.EncryptionKey) != "" {
		layer["encryption_key"] = cfg.EncryptionKey
	}
	if includeZero || strings.TrimSpace(cfg.RefreshHook) != "" {
		layer["refresh_hook"] = cfg.RefreshHook
	}

	httpLayer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.HTTP.Addr) != "" {
		httpLayer["addr"] = cfg.HTTP.Addr
	}
	if includeZero || len(cfg.HTTP.AllowedOrigins) > 0 {
		httpLayer["allowed_origins"] = append([]string(nil), cfg.HTTP.AllowedOrigins...)
	}
	if len(httpLayer) > 0 {
		layer["http"] = httpLayer
	}

	dbLayer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Database.Driver) != "" {
		dbLayer["driver"] = cfg.Database.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Database.DSN) != "" {
		dbLayer["dsn"] = cfg.Database.DSN
	}
	if len(dbLayer) > 0 {
		layer["database"] = dbLayer
	}

	return layer
}

// ResolveConfig runs the defaults < loaded < runtime layering used at process
// bootstrap. A validation failure here is startup-fatal for the caller.
func ResolveConfig(ctx context.Context, loader RawConfigLoader, runtime Config) (Config, error) {
	defaults := DefaultConfig()
	loaded, err := NewCfgxConfigProvider(loader).Load(ctx, defaults)
	if err != nil {
		return Config{}, newGatewayError(
			fmt.Sprintf("core: load configuration: %v", err),
			goerrors.CategoryInternal,
			GatewayErrorConfiguration,
		)
	}
	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		return Config{}, newGatewayError(
			fmt.Sprintf("core: resolve configuration: %v", err),
			goerrors.CategoryInternal,
			GatewayErrorConfiguration,
		)
	}
	return resolved, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
