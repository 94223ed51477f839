// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	generator *viz.GraphGenerator
}

func NewVizHandlers(store viz.Store) *VizHandlers {
	return &VizHandlers{generator: viz.NewGraphGenerator(store)}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline or leads"`
	MinScore int    `json:"min_score,omitempty" jsonschema:"Lowest lead score to include in a leads graph"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	var (
		graph *viz.Graph
		err   error
	)
	switch input.Type {
	case "pipeline", "":
		input.Type = "pipeline"
		graph, err = h.generator.GeneratePipelineGraph(ctx)
	case "leads":
		graph, err = h.generator.GenerateLeadGraph(ctx, input.MinScore)
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type %q: use pipeline or leads", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: graph.DOT,
		NodeCount: graph.Nodes,
		EdgeCount: graph.Edges,
	}, nil
}
