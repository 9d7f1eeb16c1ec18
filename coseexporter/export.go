// Package coseexporter converts a laid out cosegraph.Manager into a cosetarget.Diagram.
package coseexporter

import (
	"context"
	"fmt"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/cosetarget"
	"oss.terrastruct.com/cose/lib/geo"
	"oss.terrastruct.com/cose/lib/log"
)

// Export reads back the geometry of m. Shapes and connections keep the order of m.AllNodes and
// m.AllEdges. Their IDs are the formatted payloads, or the handles for nil payloads.
func Export(ctx context.Context, m *cosegraph.Manager, name string) (*cosetarget.Diagram, error) {
	if m.Root() == nil {
		return nil, fmt.Errorf("%w: cannot export a manager without root", cosegraph.ErrStructural)
	}
	diagram := cosetarget.NewDiagram()
	diagram.Name = name

	nodes := m.AllNodes()
	diagram.Shapes = make([]cosetarget.Shape, len(nodes))
	for i, n := range nodes {
		diagram.Shapes[i] = toShape(m, n)
	}

	edges := m.AllEdges()
	diagram.Connections = make([]cosetarget.Connection, len(edges))
	for i, e := range edges {
		diagram.Connections[i] = toConnection(m, e)
	}

	log.Debug(ctx, "exported diagram",
		slog.F("name", name),
		slog.F("shapes", len(diagram.Shapes)),
		slog.F("connections", len(diagram.Connections)),
	)
	return diagram, nil
}

func toShape(m *cosegraph.Manager, n *cosegraph.Node) cosetarget.Shape {
	shape := cosetarget.Shape{
		ID:       nodeID(n),
		Level:    m.Depth(n),
		Compound: n.IsCompound(),
		Pos:      cosetarget.NewPoint(int(math.Round(n.Left())), int(math.Round(n.Top()))),
		Width:    int(math.Round(n.Width)),
		Height:   int(math.Round(n.Height)),
	}
	if parent, ok := m.Node(m.Owner(n).Parent()); ok {
		shape.Parent = nodeID(parent)
	}
	return shape
}

func toConnection(m *cosegraph.Manager, e *cosegraph.Edge) cosetarget.Connection {
	src, dst := m.Endpoints(e)
	route := make([]*geo.Point, 0, len(e.Bends)+2)
	route = append(route, src.Center())
	route = append(route, e.Bends.Copy()...)
	route = append(route, dst.Center())
	return cosetarget.Connection{
		ID:          payloadID(e.Payload, e.ID.String()),
		Src:         nodeID(src),
		Dst:         nodeID(dst),
		InterGraph:  e.IsInterGraph(),
		IdealLength: e.IdealLength,
		Route:       route,
	}
}

func nodeID(n *cosegraph.Node) string {
	return payloadID(n.Payload, n.ID.String())
}

func payloadID(payload interface{}, fallback string) string {
	if payload == nil {
		return fallback
	}
	return fmt.Sprint(payload)
}
