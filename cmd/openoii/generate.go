package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexjunanjing-2/openOii-doubao/internal/api"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var projectID int64
	var notes string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start a pipeline run for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			info, err := client.GenerateWithRetry(cmd.Context(), projectID, api.GenerateRequest{Notes: notes})
			if errors.Is(err, api.ErrRunConflict) {
				return fmt.Errorf("project %d still has an active run after cancel-and-retry; try again shortly", projectID)
			}
			if err != nil {
				return err
			}

			fmt.Printf("run %d started (status %s)\n", info.ID, info.Status)
			fmt.Printf("follow it with: openoii watch -p %d\n", projectID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes passed to the pipeline")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newFeedbackCommand(ctx *commandContext) *cobra.Command {
	var projectID int64
	var runID int64

	cmd := &cobra.Command{
		Use:   "feedback <text>",
		Short: "Send feedback text, routed through the review agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			info, err := client.FeedbackWithRetry(cmd.Context(), projectID, args[0], runID)
			if errors.Is(err, api.ErrRunConflict) {
				return fmt.Errorf("project %d still has an active run after cancel-and-retry; try again shortly", projectID)
			}
			if err != nil {
				return err
			}

			fmt.Printf("feedback queued as run %d (status %s)\n", info.ID, info.Status)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.Flags().Int64Var(&runID, "run", 0, "Run id the feedback refers to")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a project's active run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			res, err := client.Cancel(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			// The local resume slice resets regardless of how many runs the
			// backend actually found: cancel is fire-and-forget.
			if sess, serr := ctx.sessionStore(); serr == nil {
				defer sess.Close()
				if st, lerr := sess.Load(); lerr == nil && st != nil && st.ProjectID == projectID {
					st.Generating = false
					st.AwaitingConfirm = false
					st.ConfirmAgent = ""
					st.RunID = 0
					if err := sess.Save(*st); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "session reset failed: %v\n", err)
					}
				}
			}

			fmt.Printf("cancel: %s (%d run(s))\n", res.Status, res.Cancelled)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.MarkFlagRequired("project")
	return cmd
}
