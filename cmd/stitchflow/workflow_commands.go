package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitchflow/internal/ipc"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage sample development workflows",
	}

	workflowCmd.AddCommand(newWorkflowCreateCommand(ctx))
	workflowCmd.AddCommand(newWorkflowShowCommand(ctx))
	workflowCmd.AddCommand(newWorkflowListCommand(ctx))
	workflowCmd.AddCommand(newWorkflowCancelCommand(ctx))

	return workflowCmd
}

func newWorkflowCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		sampleRequestID     string
		name                string
		priority            string
		createdBy           string
		due                 string
		designer            string
		programmer          string
		supervisorKnitting  string
		supervisorFinishing string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow with its stage cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}

			req := ipc.WorkflowCreateRequest{
				SampleRequestID: sampleRequestID,
				WorkflowName:    name,
				Priority:        priority,
				CreatedBy:       createdBy,
				DueDate:         dueDate,
			}
			// Assignees are only carried when the flag was given, so an
			// explicit empty string stays distinct from an omitted one.
			if cmd.Flags().Changed("designer") {
				req.Designer = &designer
			}
			if cmd.Flags().Changed("programmer") {
				req.Programmer = &programmer
			}
			if cmd.Flags().Changed("supervisor-knitting") {
				req.SupervisorKnitting = &supervisorKnitting
			}
			if cmd.Flags().Changed("supervisor-finishing") {
				req.SupervisorFinishing = &supervisorFinishing
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.WorkflowCreate(req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created workflow %d (%s) for sample request %s\n",
					resp.Workflow.ID, resp.Workflow.Name, resp.Workflow.SampleRequestID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sampleRequestID, "sample-request", "", "Sample request identifier (required)")
	cmd.Flags().StringVar(&name, "name", "", "Workflow name (required)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium, or high")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Username creating the workflow")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&designer, "designer", "", "Designer assignee")
	cmd.Flags().StringVar(&programmer, "programmer", "", "Programmer assignee")
	cmd.Flags().StringVar(&supervisorKnitting, "supervisor-knitting", "", "Knitting supervisor assignee")
	cmd.Flags().StringVar(&supervisorFinishing, "supervisor-finishing", "", "Finishing supervisor assignee")
	cobra.CheckErr(cmd.MarkFlagRequired("sample-request"))
	cobra.CheckErr(cmd.MarkFlagRequired("name"))

	return cmd
}

func newWorkflowShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workflow and its stage cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.WorkflowShow(id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				wf := resp.Workflow
				fmt.Fprintf(stdout, "Workflow %d: %s\n", wf.ID, wf.Name)
				fmt.Fprintf(stdout, "  Sample request: %s\n", wf.SampleRequestID)
				fmt.Fprintf(stdout, "  Status:         %s\n", wf.Status)
				fmt.Fprintf(stdout, "  Priority:       %s\n", wf.Priority)
				fmt.Fprintf(stdout, "  Created by:     %s\n", formatOptional(wf.CreatedBy))
				fmt.Fprintf(stdout, "  Due:            %s\n", formatTimePtr(wf.DueDate))
				fmt.Fprintf(stdout, "  Completed:      %s\n", formatTimePtr(wf.CompletedAt))
				fmt.Fprintln(stdout)

				rows := make([][]string, 0, len(resp.Cards))
				for _, card := range resp.Cards {
					rows = append(rows, []string{
						fmt.Sprintf("%d", card.ID),
						fmt.Sprintf("%d", card.StageOrder),
						card.StageName,
						card.Status,
						formatAssignee(card.AssignedTo),
						formatOptional(card.BlockedReason),
					})
				}
				table := renderTable(
					[]string{"Card", "Stage", "Name", "Status", "Assignee", "Blocked Reason"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newWorkflowListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.WorkflowList(statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				if len(resp.Workflows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workflows found")
					return nil
				}

				rows := make([][]string, 0, len(resp.Workflows))
				for _, wf := range resp.Workflows {
					rows = append(rows, []string{
						fmt.Sprintf("%d", wf.ID),
						wf.SampleRequestID,
						wf.Name,
						wf.Status,
						wf.Priority,
						formatTimePtr(wf.DueDate),
						formatTime(wf.CreatedAt),
					})
				}
				table := renderTable(
					[]string{"ID", "Sample Request", "Name", "Status", "Priority", "Due", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by workflow status (active, completed, cancelled)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newWorkflowCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an active workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.WorkflowCancel(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled workflow %d (%s)\n", resp.Workflow.ID, resp.Workflow.Name)
				return nil
			})
		},
	}
}
