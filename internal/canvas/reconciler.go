package canvas

import (
	"sort"

	"github.com/alexjunanjing-2/openOii-doubao/internal/layout"
)

// Ops counts the operations one reconcile pass emitted.
type Ops struct {
	Created int
	Updated int
	Deleted int
}

// ConnectorKey derives the stable shape key for an edge.
func ConnectorKey(c layout.Connector) string {
	return "edge:" + string(c.From) + "->" + string(c.To)
}

// Reconcile diffs the computed layout against the shapes currently on the
// surface. Shapes present before but absent now are deleted; shapes in
// both are updated in place so the host never loses state tied to their
// identity; shapes only in the new layout are created. Operations are
// applied in sorted key order for determinism.
func Reconcile(surface Surface, res layout.Result) Ops {
	desired := make(map[string]Shape, len(res.Blocks)+len(res.Connectors))
	for _, b := range res.Blocks {
		desired[string(b.Key)] = Shape{
			Key:     string(b.Key),
			Kind:    string(b.Kind),
			X:       b.X,
			Y:       b.Y,
			W:       b.W,
			H:       b.H,
			Payload: b.Payload,
		}
	}
	for _, c := range res.Connectors {
		key := ConnectorKey(c)
		desired[key] = Shape{
			Key:  key,
			Kind: KindConnector,
			From: string(c.From),
			To:   string(c.To),
		}
	}

	existing := make(map[string]struct{})
	for _, k := range surface.Keys() {
		existing[k] = struct{}{}
	}

	var ops Ops

	var stale []string
	for k := range existing {
		if _, ok := desired[k]; !ok {
			stale = append(stale, k)
		}
	}
	sort.Strings(stale)
	for _, k := range stale {
		surface.Delete(k)
		ops.Deleted++
	}

	keys := make([]string, 0, len(desired))
	for k := range desired {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := existing[k]; ok {
			surface.Update(desired[k])
			ops.Updated++
		} else {
			surface.Create(desired[k])
			ops.Created++
		}
	}

	return ops
}
