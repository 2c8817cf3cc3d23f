package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skekre98/cfgstack/actuator"
	"github.com/skekre98/cfgstack/build"
	"github.com/skekre98/cfgstack/core"
	"github.com/skekre98/cfgstack/web"
)

func newBuildCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Write the merged configuration (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			res, err := build.Run(cmd.Context(), build.NewPlan(cfg))
			if err != nil {
				return err
			}
			logger.Info("wrote config", "profile", res.Plan.Profile, "path", res.Plan.Output)
			printStatus(stdout, res)
			return nil
		},
	}
}

func newCheckCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the output file matches a fresh build",
		Long: `check renders the merged configuration without writing it and prints a
diff against the current output file. It exits 2 when they differ.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			res, diff, err := build.Check(cmd.Context(), build.NewPlan(cfg))
			if err != nil {
				return err
			}
			if diff != "" {
				fmt.Fprint(stdout, diff)
				return errStale
			}
			fmt.Fprintf(stdout, "%s is up to date (profile: %s)\n", res.Plan.OutputName, res.Plan.ProfileFile())
			return nil
		},
	}
}

func newRenderCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the merged configuration without writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			res, err := build.Render(cmd.Context(), build.NewPlan(cfg))
			if err != nil {
				return err
			}
			_, err = io.WriteString(stdout, res.Text)
			return err
		},
	}
}

func newProfilesCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List available profiles; the selected one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			plan := build.NewPlan(cfg)
			names, err := build.ListProfiles(plan.ProfilesDir)
			if err != nil {
				return err
			}
			for _, name := range names {
				mark := " "
				if name == plan.Profile {
					mark = "*"
				}
				fmt.Fprintf(stdout, "%s %s\n", mark, name)
			}
			return nil
		},
	}
}

func newWatchCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever an input document changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			return build.Watch(cmd.Context(), build.NewPlan(cfg), logger, func(res *build.Result) {
				printStatus(stdout, res)
			})
		},
	}
}

func newServeCmd(stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Long: `serve exposes GET /render?profile=NAME&format=toml|yaml and GET /profiles,
plus health, info and Prometheus metrics under /actuator. Each request
merges the documents afresh; nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}

			app := core.NewApp(logger,
				web.Module(),
				actuator.Module(actuator.Info{Name: "cfgstack", Version: version}),
			)
			core.Provide(app.Container, cfg)
			core.Provide(app.Container, logger)
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().String("server.addr", "", "listen address (default :8080)")
	return cmd
}
