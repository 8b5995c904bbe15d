package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexjunanjing-2/openOii-doubao/internal/stream"
	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

// openTimeout bounds how long confirm waits for the channel to establish.
const openTimeout = 5 * time.Second

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	var projectID int64
	var runID int64
	var feedback string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a gated run so the pipeline continues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if runID == 0 {
				sess, err := ctx.sessionStore()
				if err != nil {
					return err
				}
				st, err := sess.Load()
				sess.Close()
				if err != nil {
					return err
				}
				if st == nil || st.ProjectID != projectID || st.RunID == 0 {
					return fmt.Errorf("no pending run recorded for project %d; pass --run", projectID)
				}
				runID = st.RunID
			}

			mgr := stream.NewManager(cfg.Server.WSURL)
			conn := mgr.Connect(projectID, nil)
			defer mgr.Disconnect(projectID)

			select {
			case <-conn.Opened():
			case <-time.After(openTimeout):
				return fmt.Errorf("could not open event channel for project %d", projectID)
			}

			if !conn.Send(wire.ConfirmCommand(runID, feedback)) {
				return fmt.Errorf("confirm for run %d was not delivered", runID)
			}

			fmt.Printf("confirmed run %d\n", runID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.Flags().Int64Var(&runID, "run", 0, "Run id to confirm (defaults to the resumed session's run)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Optional feedback sent with the confirmation")
	cmd.MarkFlagRequired("project")
	return cmd
}
