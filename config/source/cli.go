package source

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"github.com/skekre98/cfgstack/config"
)

// CLISource loads settings from command-line flags that were set explicitly.
//
// Flag names use dots to indicate nesting:
//
//	--output=out.toml --log.level=debug
//	  -> {output: "out.toml", log: {level: "debug"}}
//
// Flags left at their default are skipped so lower-priority sources and the
// built-in defaults still apply. All values are returned as strings; type
// conversion happens during binding.
//
// CLISource should be the last source in the precedence chain so flags
// override everything else.
type CLISource struct {
	Flags *pflag.FlagSet
}

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load collects the changed flags of an already parsed flag set.
func (c *CLISource) Load(ctx context.Context) (config.Table, error) {
	result := config.Table{}
	if c.Flags == nil {
		return result, nil
	}

	c.Flags.Visit(func(flag *pflag.Flag) {
		value := flag.Value.String()
		if value == "" {
			return
		}
		setNestedValue(result, strings.Split(flag.Name, "."), value)
	})
	return result, nil
}

// Watch is not implemented for CLISource.
// Command-line arguments are static for the process lifetime.
func (c *CLISource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}
