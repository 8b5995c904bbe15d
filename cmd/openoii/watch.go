package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexjunanjing-2/openOii-doubao/internal/api"
	"github.com/alexjunanjing-2/openOii-doubao/internal/canvas"
	"github.com/alexjunanjing-2/openOii-doubao/internal/layout"
	"github.com/alexjunanjing-2/openOii-doubao/internal/run"
	"github.com/alexjunanjing-2/openOii-doubao/internal/session"
	"github.com/alexjunanjing-2/openOii-doubao/internal/stream"
	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a project's live run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			sess, err := ctx.sessionStore()
			if err != nil {
				return err
			}
			defer sess.Close()

			store := run.NewStore(projectID)

			// Resume the scalar slice first so a mid-run restart keeps its
			// confirmation gate; artifacts come from the snapshot below.
			if st, err := sess.Load(); err == nil && st != nil && st.ProjectID == projectID {
				store.Resume(run.Stage(st.Stage), st.RunID, st.Generating, st.AwaitingConfirm, st.ConfirmAgent)
			}

			snap, err := client.Snapshot(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("fetch project snapshot: %w", err)
			}
			seedStore(store, snap)

			mgr := stream.NewManager(cfg.Server.WSURL)
			mgr.Connect(projectID, func(env wire.Envelope) {
				if err := store.Apply(env); err != nil {
					log.Printf("watch: dropping event: %v", err)
				}
			})

			surface := canvas.NewMemorySurface()
			watcher := store.Watch()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			printed := len(store.Messages())
			fmt.Printf("watching project %d (%s)\n", projectID, snap.Project.Title)

			for {
				select {
				case <-sigCtx.Done():
					mgr.Disconnect(projectID)
					saveSession(sess, projectID, store.State())
					store.Unwatch(watcher)
					fmt.Println("\nstopped")
					return nil

				case <-watcher:
					st := store.State()
					msgs := store.Messages()
					for ; printed < len(msgs); printed++ {
						printMessage(msgs[printed])
					}

					ls := store.ForLayout()
					res := layout.Compute(layout.Input{
						Title:      ls.Title,
						Summary:    ls.Summary,
						Characters: ls.Characters,
						Shots:      ls.Shots,
						VideoURL:   ls.VideoURL,
					})
					canvas.Reconcile(surface, res)

					saveSession(sess, projectID, st)

					if st.AwaitingConfirm {
						fmt.Printf(">> run %d is waiting on %s — `openoii confirm -p %d` to continue\n",
							st.RunID, st.ConfirmAgent, projectID)
					}
				}
			}
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.MarkFlagRequired("project")
	return cmd
}

func seedStore(store *run.Store, snap *api.Snapshot) {
	store.SeedSnapshot(
		snap.Project.Title,
		snap.Project.Story,
		snap.Project.Summary,
		snap.Project.VideoURL,
		snap.Characters,
		snap.Scenes,
		snap.Shots,
	)

	msgs := make([]run.Message, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		created, _ := time.Parse(time.RFC3339Nano, m.CreatedAt)
		msgs = append(msgs, run.Message{
			ID:        fmt.Sprintf("msg-%d", m.ID),
			Agent:     m.Agent,
			Role:      m.Role,
			Content:   m.Content,
			Progress:  m.Progress,
			IsLoading: m.IsLoading,
			CreatedAt: created,
		})
	}
	store.ReplaceMessages(msgs)
}

func saveSession(sess *session.Store, projectID int64, st run.State) {
	err := sess.Save(session.State{
		ProjectID:       projectID,
		Stage:           string(st.Stage),
		RunID:           st.RunID,
		Generating:      st.Generating,
		AwaitingConfirm: st.AwaitingConfirm,
		ConfirmAgent:    st.ConfirmAgent,
	})
	if err != nil {
		log.Printf("watch: session save failed: %v", err)
	}
}

func printMessage(m run.Message) {
	switch m.Role {
	case run.RoleSeparator:
		fmt.Println(strings.Repeat("-", 40))
	case run.RoleError:
		fmt.Printf("[%s] ERROR: %s\n", m.Agent, m.Content)
	case run.RoleHandoff:
		fmt.Printf("-- %s\n", m.Content)
	default:
		suffix := ""
		if m.IsLoading {
			suffix = " ..."
		}
		fmt.Printf("[%s] %s%s\n", m.Agent, m.Content, suffix)
	}
}
