package api

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

// Snapshot is the ground-truth project state fetched on page load or
// project switch. Artifacts are never resumed from local persistence;
// this is where they come from instead.
type Snapshot struct {
	Project    Project
	Characters []wire.Character
	Scenes     []wire.Scene
	Shots      []wire.Shot
	Messages   []MessageRecord
}

// Snapshot fetches the project record and all collections concurrently.
func (c *Client) Snapshot(ctx context.Context, projectID int64) (*Snapshot, error) {
	snap := &Snapshot{}
	prefix := fmt.Sprintf("/api/v1/projects/%d", projectID)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(ctx, prefix, &snap.Project) })
	g.Go(func() error { return c.get(ctx, prefix+"/characters", &snap.Characters) })
	g.Go(func() error { return c.get(ctx, prefix+"/scenes", &snap.Scenes) })
	g.Go(func() error { return c.get(ctx, prefix+"/shots", &snap.Shots) })
	g.Go(func() error { return c.get(ctx, prefix+"/messages", &snap.Messages) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
