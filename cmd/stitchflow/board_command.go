package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitchflow/internal/board"
	"stitchflow/internal/ipc"
	"stitchflow/internal/workflow"
)

func newBoardCommand(ctx *commandContext) *cobra.Command {
	var workflowIDs []int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show stage cards grouped by workflow and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Board(workflowIDs...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Lanes) == 0 {
					fmt.Fprintln(stdout, "Board is empty")
					return nil
				}

				colorize := shouldColorize(stdout)
				for _, lane := range resp.Lanes {
					for _, line := range renderSectionHeader(fmt.Sprintf("Workflow %d", lane.WorkflowID), colorize) {
						fmt.Fprintln(stdout, line)
					}
					rows := make([][]string, 0, len(lane.Columns))
					for _, column := range lane.Columns {
						rows = append(rows, []string{
							columnLabel(column.Status),
							fmt.Sprintf("%d", len(column.Cards)),
							cardSummaries(column.Cards),
						})
					}
					table := renderTable(
						[]string{"Status", "Count", "Cards"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignLeft},
					)
					fmt.Fprintln(stdout, table)
					fmt.Fprintln(stdout)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64SliceVar(&workflowIDs, "workflow", nil, "Limit the board to specific workflow IDs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func columnLabel(status string) string {
	parsed, ok := workflow.ParseCardStatus(status)
	if !ok {
		return status
	}
	return board.StatusLabel(parsed)
}

func cardSummaries(cards []ipc.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	summary := ""
	for i, card := range cards {
		if i > 0 {
			summary += ", "
		}
		summary += fmt.Sprintf("#%d %s", card.ID, card.StageName)
	}
	return summary
}
