package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"stitchflow/internal/ipc"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate workflow statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stats()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Workflows", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", resp.TotalWorkflows), colorize))
				for _, status := range sortedKeys(resp.WorkflowStatusCounts) {
					fmt.Fprintln(stdout, renderStatusLine(status, statusInfo, fmt.Sprintf("%d", resp.WorkflowStatusCounts[status]), colorize))
				}
				fmt.Fprintln(stdout, renderStatusLine("Overdue", statusWarnIf(resp.OverdueWorkflows > 0), fmt.Sprintf("%d", resp.OverdueWorkflows), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Recent", statusInfo, fmt.Sprintf("%d", resp.RecentWorkflows), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Completion rate", statusInfo, fmt.Sprintf("%.1f%%", resp.CompletionRate), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Avg completion", statusInfo, fmt.Sprintf("%.1f days", resp.AvgCompletionDays), colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Cards", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", resp.TotalCards), colorize))
				for _, status := range sortedKeys(resp.CardStatusCounts) {
					fmt.Fprintln(stdout, renderStatusLine(status, statusInfo, fmt.Sprintf("%d", resp.CardStatusCounts[status]), colorize))
				}
				fmt.Fprintln(stdout, renderStatusLine("Blocked", statusWarnIf(resp.BlockedCards > 0), fmt.Sprintf("%d", resp.BlockedCards), colorize))
				fmt.Fprintln(stdout)

				if len(resp.PriorityDistribution) > 0 {
					for _, line := range renderSectionHeader("Priorities", colorize) {
						fmt.Fprintln(stdout, line)
					}
					for _, priority := range sortedKeys(resp.PriorityDistribution) {
						fmt.Fprintln(stdout, renderStatusLine(priority, statusInfo, fmt.Sprintf("%d", resp.PriorityDistribution[priority]), colorize))
					}
					fmt.Fprintln(stdout)
				}

				if len(resp.StageBreakdown) > 0 {
					for _, line := range renderSectionHeader("Stages", colorize) {
						fmt.Fprintln(stdout, line)
					}
					rows := make([][]string, 0, len(resp.StageBreakdown))
					for _, stage := range sortedStageNames(resp.StageBreakdown) {
						counts := resp.StageBreakdown[stage]
						rows = append(rows, []string{
							stage,
							fmt.Sprintf("%d", counts["pending"]),
							fmt.Sprintf("%d", counts["ready"]),
							fmt.Sprintf("%d", counts["in_progress"]),
							fmt.Sprintf("%d", counts["completed"]),
							fmt.Sprintf("%d", counts["blocked"]),
						})
					}
					table := renderTable(
						[]string{"Stage", "Pending", "Ready", "In Progress", "Completed", "Blocked"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
					)
					fmt.Fprintln(stdout, table)
					fmt.Fprintln(stdout)
				}

				if len(resp.WorkloadDistribution) > 0 {
					for _, line := range renderSectionHeader("Workload", colorize) {
						fmt.Fprintln(stdout, line)
					}
					rows := make([][]string, 0, len(resp.WorkloadDistribution))
					for _, assignee := range sortedKeys(resp.WorkloadDistribution) {
						rows = append(rows, []string{assignee, fmt.Sprintf("%d", resp.WorkloadDistribution[assignee])})
					}
					table := renderTable([]string{"Assignee", "Open Cards"}, rows, []columnAlignment{alignLeft, alignRight})
					fmt.Fprintln(stdout, table)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func statusWarnIf(warn bool) statusKind {
	if warn {
		return statusWarn
	}
	return statusOK
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedStageNames(breakdown map[string]map[string]int) []string {
	keys := make([]string, 0, len(breakdown))
	for key := range breakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
