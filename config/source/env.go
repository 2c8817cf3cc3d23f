package source

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/skekre98/cfgstack/config"
)

// ProfileVar selects the profile overlay.
const ProfileVar = "CODEX_PROFILE"

// EnvPrefix is the prefix of every other cfgstack variable.
const EnvPrefix = "CFGSTACK_"

type selector struct {
	Profile string `env:"CODEX_PROFILE"`
}

// prefixed lists the EnvPrefix variables EnvSource understands. Each field
// maps to the settings key of the same name in config.Root.
type prefixed struct {
	Dir        string `env:"DIR"`
	Template   string `env:"TEMPLATE"`
	Profiles   string `env:"PROFILES"`
	Local      string `env:"LOCAL"`
	Output     string `env:"OUTPUT"`
	Format     string `env:"FORMAT"`
	LogLevel   string `env:"LOG_LEVEL"`
	ServerAddr string `env:"SERVER_ADDR"`
}

// EnvSource loads cfgstack settings from environment variables.
//
// CODEX_PROFILE selects the profile; the remaining variables carry the
// CFGSTACK_ prefix:
//
//	CODEX_PROFILE=fast           -> {profile: "fast"}
//	CFGSTACK_OUTPUT=out.toml     -> {output: "out.toml"}
//	CFGSTACK_LOG_LEVEL=debug     -> {log: {level: "debug"}}
//	CFGSTACK_SERVER_ADDR=:9090   -> {server: {addr: ":9090"}}
//
// Empty variables are ignored. All values are returned as strings; type
// conversion happens during binding.
type EnvSource struct {
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load reads the variables listed above.
func (e *EnvSource) Load(ctx context.Context) (config.Table, error) {
	var sel selector
	if err := env.ParseWithOptions(&sel, env.Options{Environment: e.Environment}); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	var vars prefixed
	if err := env.ParseWithOptions(&vars, env.Options{Environment: e.Environment, Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	result := config.Table{}
	for _, kv := range []struct {
		path  []string
		value string
	}{
		{[]string{"profile"}, sel.Profile},
		{[]string{"dir"}, vars.Dir},
		{[]string{"template"}, vars.Template},
		{[]string{"profiles"}, vars.Profiles},
		{[]string{"local"}, vars.Local},
		{[]string{"output"}, vars.Output},
		{[]string{"format"}, vars.Format},
		{[]string{"log", "level"}, vars.LogLevel},
		{[]string{"server", "addr"}, vars.ServerAddr},
	} {
		if kv.value == "" {
			continue
		}
		setNestedValue(result, kv.path, kv.value)
	}
	return result, nil
}

// Watch is not implemented for EnvSource.
// Returns nil immediately, indicating that environment watching is not supported.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func setNestedValue(m config.Table, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = config.String(value)
			return
		}

		if existing, exists := current[segment]; exists {
			if nested, ok := existing.(config.Table); ok {
				current = nested
			} else {
				// Conflict: a leaf value already exists at this path
				return
			}
		} else {
			nested := config.Table{}
			current[segment] = nested
			current = nested
		}
	}
}
