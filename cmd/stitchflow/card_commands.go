package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stitchflow/internal/ipc"
)

func newCardCommand(ctx *commandContext) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage stage cards",
	}

	cardCmd.AddCommand(newCardUpdateCommand(ctx))
	cardCmd.AddCommand(newCardValidateCommand(ctx))
	cardCmd.AddCommand(newCardCommentCommand(ctx))
	cardCmd.AddCommand(newCardAttachCommand(ctx))

	return cardCmd
}

func newCardUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		username    string
		role        string
		userID      int64
		permissions []string
		reason      string
	)

	cmd := &cobra.Command{
		Use:   "update <card-id> <status>",
		Short: "Transition a stage card to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			target := strings.TrimSpace(args[1])

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CardUpdate(ipc.CardUpdateRequest{
					User: ipc.User{
						ID:          userID,
						Username:    username,
						Role:        role,
						Permissions: permissions,
					},
					CardID: cardID,
					Target: target,
					Reason: reason,
				})
				if err != nil {
					return err
				}
				card := resp.Card
				fmt.Fprintf(cmd.OutOrStdout(), "Card %d (%s) is now %s\n", card.ID, card.StageName, card.Status)
				if card.Status == "blocked" && card.BlockedReason != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Reason: %s\n", card.BlockedReason)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Acting username (required)")
	cmd.Flags().StringVar(&role, "role", "user", "Acting user role")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "Acting user ID")
	cmd.Flags().StringSliceVar(&permissions, "permission", nil, "Extra permission granted to the acting user")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason when blocking a card")
	cobra.CheckErr(cmd.MarkFlagRequired("user"))

	return cmd
}

func newCardValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <card-id> <status>",
		Short: "Check whether a transition would be allowed without applying it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			target := strings.TrimSpace(args[1])

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CardValidate(cardID, target)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.IsValid {
					fmt.Fprintf(stdout, "Card %d may transition to %s\n", cardID, target)
					return nil
				}
				fmt.Fprintf(stdout, "Card %d may not transition to %s: %s\n", cardID, target, resp.Error)
				return nil
			})
		},
	}
}

func newCardCommentCommand(ctx *commandContext) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "comment <card-id> <text>",
		Short: "Add a comment to a stage card",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			body := strings.Join(args[1:], " ")

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CardComment(ipc.CardCommentRequest{
					CardID: cardID,
					Author: author,
					Body:   body,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added comment %d to card %d\n", resp.Comment.ID, cardID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Comment author (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("author"))
	return cmd
}

func newCardAttachCommand(ctx *commandContext) *cobra.Command {
	var uploadedBy string
	var fileName string

	cmd := &cobra.Command{
		Use:   "attach <card-id> <path>",
		Short: "Record a file attachment against a stage card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			filePath := args[1]
			name := fileName
			if name == "" {
				name = filepath.Base(filePath)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CardAttach(ipc.CardAttachRequest{
					CardID:     cardID,
					FileName:   name,
					FilePath:   filePath,
					UploadedBy: uploadedBy,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to card %d\n", resp.Attachment.FileName, cardID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fileName, "name", "", "Attachment display name (defaults to the file name)")
	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", "", "Username recording the attachment")
	return cmd
}
