package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitchflow/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Ask the stitchflow daemon to start processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Started {
					fmt.Fprintln(stdout, "Daemon started")
					return nil
				}
				fmt.Fprintf(stdout, "Daemon not started: %s\n", resp.Message)
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the stitchflow daemon to stop processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and store status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				printHealth(cmd, resp, true)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func printHealth(cmd *cobra.Command, resp ipc.StatusResponse, withRuntime bool) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	if withRuntime {
		for _, line := range renderSectionHeader("Daemon", colorize) {
			fmt.Fprintln(stdout, line)
		}
		runningKind := statusError
		runningText := "stopped"
		if resp.Running {
			runningKind = statusOK
			runningText = "running"
		}
		fmt.Fprintln(stdout, renderStatusLine("State", runningKind, runningText, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.DBPath, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, resp.LockPath, colorize))
		fmt.Fprintln(stdout)
	}

	for _, line := range renderSectionHeader("Store", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Workflows", statusInfo, fmt.Sprintf("%d total, %d active", resp.TotalWorkflows, resp.ActiveWorkflows), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Completed", statusInfo, fmt.Sprintf("%d", resp.CompletedWorkflows), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Cancelled", statusInfo, fmt.Sprintf("%d", resp.CancelledWorkflows), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Cards", statusInfo, fmt.Sprintf("%d", resp.TotalCards), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Blocked cards", statusWarnIf(resp.BlockedCards > 0), fmt.Sprintf("%d", resp.BlockedCards), colorize))
}
