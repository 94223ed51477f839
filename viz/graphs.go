// ABOUTME: GraphViz graph generation over the record store
// ABOUTME: Shared generator type and render helper for DOT output
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
)

// Store is what graph and dashboard generation read from.
type Store interface {
	ListContacts(ctx context.Context, filter db.ContactFilter) ([]models.Contact, error)
	ListDeals(ctx context.Context, filter db.DealFilter) ([]models.Deal, error)
	ListActivities(ctx context.Context, filter db.ActivityFilter) ([]models.Activity, error)
}

type GraphGenerator struct {
	store Store
}

func NewGraphGenerator(store Store) *GraphGenerator {
	return &GraphGenerator{store: store}
}

// Graph is rendered DOT plus node and edge counts.
type Graph struct {
	DOT   string
	Nodes int
	Edges int
}

// builder wraps a graph and counts what is added to it.
type builder struct {
	graph *cgraph.Graph
	nodes int
	edges int
}

func (b *builder) node(name string) (*cgraph.Node, error) {
	n, err := b.graph.CreateNodeByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create node %s: %w", name, err)
	}
	b.nodes++
	return n, nil
}

func (b *builder) edge(name string, from, to *cgraph.Node) (*cgraph.Edge, error) {
	e, err := b.graph.CreateEdgeByName(name, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge %s: %w", name, err)
	}
	b.edges++
	return e, nil
}

// render builds a graph with build and renders it as DOT.
func render(ctx context.Context, label string, build func(b *builder) error) (*Graph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)
	b := &builder{graph: graph}
	if err := build(b); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}

	return &Graph{
		DOT:   buf.String(),
		Nodes: b.nodes,
		Edges: b.edges,
	}, nil
}

func formatMoney(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	}
	return fmt.Sprintf("$%.0f", v)
}
