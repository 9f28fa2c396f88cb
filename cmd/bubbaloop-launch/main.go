// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Command bubbaloop-launch resolves a launch file into a dependency-ordered
// plan and runs it, ROS2-launch style: one node per process, respawned per
// policy, torn down in reverse dependency order on shutdown.
//
// Exit codes:
//
//	0  clean shutdown
//	1  a node exited non-zero under fail-fast, or its respawn budget was
//	   exhausted
//	2  planning failure (cycle, unsatisfied dependency, no nodes selected)
//	3  launch file parse or validation error
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kornia/bubbaloop/internal/dependency"
	"github.com/kornia/bubbaloop/internal/executor"
	"github.com/kornia/bubbaloop/internal/launchfile"
	"github.com/kornia/bubbaloop/internal/logging"
	"github.com/kornia/bubbaloop/internal/signaling"
)

const (
	exitClean = iota
	exitFailFast
	exitPlan
	exitParse
)

type launchOptions struct {
	args     map[string]string
	groups   []string
	enable   []string
	disable  []string
	dryRun   bool
	validate bool
	logLevel string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opts := &launchOptions{args: map[string]string{}}
	var rawArgs []string

	cmd := &cobra.Command{
		Use:   "bubbaloop-launch [launch_file]",
		Short: "ROS2-inspired launch system for bubbaloop services",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().StringArrayVarP(&rawArgs, "arg", "a", nil, "override launch argument (key:=value), repeatable")
	cmd.Flags().StringSliceVarP(&opts.groups, "groups", "g", nil, "only launch nodes in these groups")
	cmd.Flags().StringSliceVar(&opts.enable, "enable", nil, "explicitly enable these nodes")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "explicitly disable these nodes")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the launch plan without executing")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "validate the launch file and exit")
	cmd.Flags().StringVarP(&opts.logLevel, "log-level", "l", "info", "log level (error, warn, info, debug, trace)")

	launchFile := "launch/default.launch.yaml"
	code := exitClean
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if len(args) == 1 {
			launchFile = args[0]
		}
		for _, raw := range rawArgs {
			k, v, ok := strings.Cut(raw, ":=")
			if !ok {
				return fmt.Errorf("invalid argument override %q, expected key:=value", raw)
			}
			opts.args[k] = v
		}
		code = execute(launchFile, opts)
		return nil
	}
	cmd.SilenceUsage = true
	cmd.SetArgs(argv)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitParse
	}
	return code
}

func execute(path string, opts *launchOptions) int {
	logging.Init(logging.Config{Level: opts.logLevel, Format: "console"})

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error().Err(err).Str("file", path).Msg("failed to read launch file")
		return exitParse
	}

	lf, err := launchfile.Parse(data)
	if err != nil {
		logging.Error().Err(err).Msg("failed to parse launch file")
		return exitParse
	}

	nodes, err := launchfile.Resolve(lf, opts.args)
	if err != nil {
		logging.Error().Err(err).Msg("failed to resolve launch arguments")
		if errors.Is(err, launchfile.ErrPlan) {
			return exitPlan
		}
		return exitParse
	}

	if err := launchfile.Validate(nodes); err != nil {
		logging.Error().Err(err).Msg("launch file validation failed")
		if errors.Is(err, launchfile.ErrPlan) {
			return exitPlan
		}
		return exitParse
	}

	if opts.validate {
		logging.Info().Int("nodes", len(nodes)).Msg("launch file is valid")
		return exitClean
	}

	plan, err := dependency.Build(nodes, dependency.Filter{
		Groups:  opts.groups,
		Enable:  opts.enable,
		Disable: opts.disable,
	})
	if err != nil {
		var cycleErr *dependency.CycleError
		var unsatisfiedErr *dependency.UnsatisfiedDependencyError
		switch {
		case errors.As(err, &cycleErr):
			logging.Error().Strs("nodes", cycleErr.Names).Msg("dependency cycle detected")
		case errors.As(err, &unsatisfiedErr):
			logging.Error().Str("node", unsatisfiedErr.Node).Str("dependency", unsatisfiedErr.Dependency).Msg("unsatisfied dependency")
		default:
			logging.Error().Err(err).Msg("failed to build launch plan")
		}
		return exitPlan
	}

	logging.Info().Strs("order", plan.Order).Msg("resolved launch plan")

	broadcast := signaling.New(context.Background())
	stop := broadcast.Watch()
	defer stop()

	ex := executor.New(plan, broadcast, executor.Options{DryRun: opts.dryRun})

	go logEvents(ex)

	if err := ex.Run(broadcast.Context()); err != nil {
		logging.Error().Err(err).Msg("launch run failed")
		return exitFailFast
	}
	return exitClean
}

func logEvents(ex *executor.Executor) {
	for ev := range ex.Events() {
		nodeLog := logging.Node(ev.Node)
		entry := nodeLog.Info().Str("kind", ev.Kind.String())
		if ev.Pid != 0 {
			entry = entry.Int("pid", ev.Pid)
		}
		if ev.Line != "" {
			entry = entry.Str("line", ev.Line)
		}
		if ev.Kind == executor.Exited {
			entry = entry.Int("exit_code", ev.ExitCode).Dur("duration", ev.Duration)
		}
		if ev.Kind == executor.Failed {
			entry = entry.Str("cause", ev.Cause)
		}
		entry.Msg("process event")
	}
}
