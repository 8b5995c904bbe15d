package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexjunanjing-2/openOii-doubao/internal/canvas"
	"github.com/alexjunanjing-2/openOii-doubao/internal/layout"
	"github.com/alexjunanjing-2/openOii-doubao/internal/run"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Compute and print the canvas scene for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			snap, err := client.Snapshot(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			store := run.NewStore(projectID)
			seedStore(store, snap)
			ls := store.ForLayout()

			res := layout.Compute(layout.Input{
				Title:      ls.Title,
				Summary:    ls.Summary,
				Characters: ls.Characters,
				Shots:      ls.Shots,
				VideoURL:   ls.VideoURL,
			})

			surface := canvas.NewMemorySurface()
			ops := canvas.Reconcile(surface, res)

			rows := make([][]string, 0, len(res.Blocks))
			for _, b := range res.Blocks {
				rows = append(rows, []string{
					string(b.Key),
					string(b.Kind),
					fmt.Sprintf("%.0f,%.0f", b.X, b.Y),
					fmt.Sprintf("%.0f x %.0f", b.W, b.H),
				})
			}
			fmt.Println(renderTable([]string{"Key", "Kind", "Position", "Size"}, rows))

			for _, c := range res.Connectors {
				fmt.Printf("%s -> %s\n", c.From, c.To)
			}
			fmt.Printf("%d block(s), %d connector(s), %d shape(s) created\n",
				len(res.Blocks), len(res.Connectors), ops.Created)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.MarkFlagRequired("project")
	return cmd
}
