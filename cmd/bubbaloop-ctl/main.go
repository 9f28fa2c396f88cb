// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Command bubbaloop-ctl is the operator-facing client for a running
// bubbaloopd: it lists nodes, reports status, and issues start/stop/
// restart/build/logs commands over the fabric.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/kornia/bubbaloop/internal/config"
	"github.com/kornia/bubbaloop/internal/fabric"
	"github.com/kornia/bubbaloop/internal/naming"
	"github.com/kornia/bubbaloop/internal/wire"
)

var (
	scope      string
	machine    string
	endpoint   string
	timeoutSec int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bubbaloop-ctl",
		Short: "control a running bubbaloopd",
	}
	root.PersistentFlags().StringVar(&scope, "scope", "", "fleet scope (default: auto-detected)")
	root.PersistentFlags().StringVar(&machine, "machine", "", "target machine ID")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "fabric endpoint override")
	root.PersistentFlags().IntVar(&timeoutSec, "timeout", 5, "command timeout in seconds")

	root.AddCommand(
		newListCmd(),
		newStatusCmd(),
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newBuildCmd(),
		newLogsCmd(),
	)
	return root
}

func resolveMachine() string {
	if machine != "" {
		return machine
	}
	return naming.MachineID(nil, nil)
}

func resolveScope() string {
	if scope != "" {
		return scope
	}
	return naming.Scope(nil)
}

func withSession(fn func(ctx context.Context, sess *fabric.Session, m, s string) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if endpoint != "" {
		cfg.Fabric.Endpoint = endpoint
	}

	sess, err := fabric.Open(ctx, cfg.Fabric, os.Getenv)
	if err != nil {
		return fmt.Errorf("connect to fabric: %w", err)
	}
	defer sess.Close()

	return fn(ctx, sess, resolveMachine(), resolveScope())
}

func query(ctx context.Context, sess *fabric.Session, topic string, payload []byte) ([]fabric.Sample, error) {
	return sess.Query(ctx, topic, payload, time.Duration(timeoutSec)*time.Second)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every node known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, sess *fabric.Session, m, s string) error {
				topic := naming.Topic(s, m, "daemon/api/nodes/list")
				samples, err := query(ctx, sess, topic, nil)
				if err != nil {
					return err
				}
				if len(samples) == 0 {
					return fmt.Errorf("no reply from daemon on %s", topic)
				}
				view, err := wire.UnmarshalRegistryView(samples[0].Payload)
				if err != nil {
					return fmt.Errorf("decode reply: %w", err)
				}
				printRegistryView(view)
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "show a single node's live status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withSession(func(ctx context.Context, sess *fabric.Session, m, s string) error {
				topic := naming.Topic(s, m, fmt.Sprintf("daemon/api/nodes/%s/status", name))
				samples, err := query(ctx, sess, topic, nil)
				if err != nil {
					return err
				}
				if len(samples) == 0 {
					return fmt.Errorf("node %q not found", name)
				}
				entry, err := wire.UnmarshalRegistryEntry(samples[0].Payload)
				if err != nil {
					return fmt.Errorf("decode reply: %w", err)
				}
				printEntry(entry)
				return nil
			})
		},
	}
}

func commandCmd(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withSession(func(ctx context.Context, sess *fabric.Session, m, s string) error {
				topic := naming.Topic(s, m, fmt.Sprintf("daemon/api/nodes/%s/%s", name, verb))
				samples, err := query(ctx, sess, topic, nil)
				if err != nil {
					return err
				}
				if len(samples) == 0 {
					return fmt.Errorf("no reply from daemon on %s", topic)
				}
				result, err := wire.UnmarshalCommandResult(samples[0].Payload)
				if err != nil {
					return fmt.Errorf("decode reply: %w", err)
				}
				fmt.Println(result.Message)
				if !result.OK {
					return fmt.Errorf("%s failed", verb)
				}
				return nil
			})
		},
	}
}

func newStartCmd() *cobra.Command   { return commandCmd("start <name>", "start a node", "start") }
func newStopCmd() *cobra.Command    { return commandCmd("stop <name>", "stop a node", "stop") }
func newRestartCmd() *cobra.Command { return commandCmd("restart <name>", "restart a node", "restart") }
func newBuildCmd() *cobra.Command   { return commandCmd("build <name>", "restart a node so it runs its installed executable (no rebuild)", "build") }

func newLogsCmd() *cobra.Command {
	var lines uint32
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "show or follow a node's log lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if follow {
				return followLogs(name)
			}
			return withSession(func(ctx context.Context, sess *fabric.Session, m, s string) error {
				topic := naming.Topic(s, m, fmt.Sprintf("daemon/api/nodes/%s/logs", name))
				req := wire.LogsRequest{Lines: lines}
				samples, err := query(ctx, sess, topic, req.Marshal())
				if err != nil {
					return err
				}
				if len(samples) == 0 {
					return fmt.Errorf("no reply from daemon on %s", topic)
				}
				resp, err := wire.UnmarshalLogsResponse(samples[0].Payload)
				if err != nil {
					return fmt.Errorf("decode reply: %w", err)
				}
				if !resp.Success {
					return fmt.Errorf("logs failed: %s", resp.Error)
				}
				for _, line := range resp.Lines {
					fmt.Println(line)
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint32VarP(&lines, "lines", "n", 100, "number of log lines to request")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow the node's journal directly (bypasses the fabric)")
	return cmd
}

// followLogs shells out to journalctl -f directly, bypassing the fabric
// entirely: a live follow has no natural request/reply shape, and
// bubbaloopd's own machine always has a local journal to read.
func followLogs(name string) error {
	unit := fmt.Sprintf("bubbaloop-%s.service", name)
	c := exec.Command("journalctl", "--user", "-u", unit, "-f", "--no-pager")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	return c.Run()
}

func printRegistryView(view wire.RegistryView) {
	fmt.Printf("%-20s %-12s %-10s %s\n", "NAME", "STATUS", "PID", "UNIT")
	for _, e := range view.Entries {
		printRow(e)
	}
}

func printEntry(e wire.RegistryEntry) {
	printRow(e)
}

func printRow(e wire.RegistryEntry) {
	pid := "-"
	if e.Status.HasPid {
		pid = fmt.Sprintf("%d", e.Status.Pid)
	}
	fmt.Printf("%-20s %-12s %-10s %s\n", e.Descriptor.Name, statusLabel(e.Status.Status), pid, e.Descriptor.Unit)
}

func statusLabel(k wire.StatusKind) string {
	switch k {
	case wire.StatusInactive:
		return "inactive"
	case wire.StatusActivating:
		return "activating"
	case wire.StatusActive:
		return "active"
	case wire.StatusDeactivating:
		return "deactivating"
	case wire.StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
