package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a project's artifacts and generation state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			snap, err := client.Snapshot(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			fmt.Printf("project %d: %s (status %s)\n", snap.Project.ID, snap.Project.Title, snap.Project.Status)
			if snap.Project.Summary != "" {
				fmt.Printf("summary: %s\n", snap.Project.Summary)
			}
			if snap.Project.VideoURL != "" {
				fmt.Printf("final video: %s\n", snap.Project.VideoURL)
			}
			fmt.Println()

			if len(snap.Characters) > 0 {
				rows := make([][]string, 0, len(snap.Characters))
				for _, c := range snap.Characters {
					rows = append(rows, []string{
						strconv.FormatInt(c.ID, 10), c.Name, mark(c.ImageURL != ""),
					})
				}
				fmt.Println(renderTable([]string{"ID", "Character", "Image"}, rows))
			}

			if len(snap.Shots) > 0 {
				rows := make([][]string, 0, len(snap.Shots))
				for _, sh := range snap.Shots {
					rows = append(rows, []string{
						strconv.FormatInt(sh.ID, 10),
						strconv.FormatInt(sh.SceneID, 10),
						strconv.Itoa(sh.Order),
						mark(sh.ImageURL != ""),
						mark(sh.VideoURL != ""),
					})
				}
				fmt.Println(renderTable([]string{"Shot", "Scene", "Order", "Frame", "Video"}, rows))
			}

			fmt.Printf("%d character(s), %d scene(s), %d shot(s), %d message(s)\n",
				len(snap.Characters), len(snap.Scenes), len(snap.Shots), len(snap.Messages))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id")
	cmd.MarkFlagRequired("project")
	return cmd
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}
