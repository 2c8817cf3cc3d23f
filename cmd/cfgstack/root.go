package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/skekre98/cfgstack/build"
	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitStale   = 2
)

// errStale makes check exit with exitStale; the diff is already printed.
var errStale = errors.New("output is out of date")

var (
	okColor  = color.New(color.FgGreen)
	errColor = color.New(color.FgRed, color.Bold)
)

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errStale):
		return exitStale
	default:
		printError(stderr, err)
		return exitFailure
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "cfgstack",
		Short: "Merge a config template, a profile and a local override into config.toml",
		Long: `cfgstack deep-merges, in order, config.template.toml (optional),
profiles/<profile>.toml and config.local.toml (optional) and writes the
result to config.toml. The profile comes from --profile, $CODEX_PROFILE
or defaults to "safe".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	pf := root.PersistentFlags()
	pf.String("dir", "", "directory holding the documents (default .)")
	pf.StringP("profile", "p", "", "profile to apply (default $CODEX_PROFILE, then safe)")
	pf.String("template", "", "base template, relative to --dir (default config.template.toml)")
	pf.String("profiles", "", "profiles directory, relative to --dir (default profiles)")
	pf.String("local", "", "local override, relative to --dir (default config.local.toml)")
	pf.StringP("output", "o", "", "output file, relative to --dir (default config.toml)")
	pf.StringP("format", "f", "", "output format: toml or yaml (default toml)")
	pf.String("log.level", "", "log level: debug, info, warn or error (default warn)")

	buildCmd := newBuildCmd(stdout, stderr)
	root.RunE = buildCmd.RunE

	root.AddCommand(
		buildCmd,
		newCheckCmd(stdout, stderr),
		newRenderCmd(stdout, stderr),
		newProfilesCmd(stdout, stderr),
		newWatchCmd(stdout, stderr),
		newServeCmd(stderr),
	)
	return root
}

// setup resolves the settings for cmd and the logger they ask for.
func setup(cmd *cobra.Command, stderr io.Writer) (config.Root, *slog.Logger, error) {
	cfg, err := build.LoadSettings(cmd.Context(), cmd.Flags(), nil)
	if err != nil {
		return cfg, nil, err
	}
	logger := logging.New(stderr, cfg.Log.Level)
	logger.Debug("settings resolved",
		"dir", cfg.Dir, "profile", cfg.Profile, "output", cfg.Output, "format", cfg.Format)
	return cfg, logger, nil
}

func printError(w io.Writer, err error) {
	var (
		missing *build.MissingProfileError
		perr    *config.ParseError
	)
	switch {
	case errors.As(err, &missing):
		errColor.Fprintf(w, "cfgstack: %v\n", missing)
	case errors.As(err, &perr):
		errColor.Fprintf(w, "cfgstack: config parse error: %v\n", perr)
		if perr.Context != "" {
			fmt.Fprintln(w, perr.Context)
		}
	default:
		errColor.Fprintf(w, "cfgstack: %v\n", err)
	}
}

func printStatus(w io.Writer, res *build.Result) {
	okColor.Fprintln(w, res.Status())
}
