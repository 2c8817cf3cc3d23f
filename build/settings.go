package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/config/source"
)

// LoadSettings resolves cfgstack's settings from, lowest priority first,
// the built-in defaults, a .env file in the settings directory, the
// environment and the changed flags in flags.
//
// environ replaces the process environment when non-nil. Variables from the
// .env file never override ones that are already set.
func LoadSettings(ctx context.Context, flags *pflag.FlagSet, environ map[string]string) (config.Root, error) {
	if environ == nil {
		environ = processEnv()
	}
	cli := &source.CLISource{Flags: flags}

	// .env sits next to the documents, so find the directory first
	cfg, err := resolveSettings(ctx, &source.EnvSource{Environment: environ}, cli)
	if err != nil {
		return cfg, err
	}

	dotenv := filepath.Join(cfg.Dir, ".env")
	vars, err := godotenv.Read(dotenv)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", dotenv, err)
	}

	for k, v := range environ {
		vars[k] = v
	}
	return resolveSettings(ctx, &source.EnvSource{Environment: vars}, cli)
}

func resolveSettings(ctx context.Context, sources ...config.ConfigSource) (config.Root, error) {
	var cfg config.Root

	merged, err := config.Fold(ctx, sources...)
	if err != nil {
		return cfg, err
	}

	binder := config.NewBinder()
	if err := binder.Decode(merged, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to bind settings: %w", err)
	}
	if err := mergo.Merge(&cfg, config.Defaults()); err != nil {
		return cfg, fmt.Errorf("apply default settings: %w", err)
	}
	cfg.Profile = strings.TrimSuffix(cfg.Profile, ".toml")

	if err := binder.Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func processEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
