// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard, pipeline view, and graph generation commands
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/harperreed/leadflow/viz"
)

// VizGraphPipelineCommand generates a deal pipeline graph.
func (a *App) VizGraphPipelineCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("viz graph pipeline")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	graph, err := viz.NewGraphGenerator(a.Store).GeneratePipelineGraph(ctx)
	if err != nil {
		return err
	}
	return a.writeGraph(graph, *output)
}

// VizGraphLeadsCommand generates a graph of scored contacts and their deals.
func (a *App) VizGraphLeadsCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("viz graph leads")
	output := fs.String("output", "", "Output file (default: stdout)")
	minScore := fs.Int("min-score", 0, "Lowest lead score to include")
	if err := fs.Parse(args); err != nil {
		return err
	}

	graph, err := viz.NewGraphGenerator(a.Store).GenerateLeadGraph(ctx, *minScore)
	if err != nil {
		return err
	}
	return a.writeGraph(graph, *output)
}

func (a *App) writeGraph(graph *viz.Graph, output string) error {
	if output != "" {
		return os.WriteFile(output, []byte(graph.DOT), 0644)
	}
	a.printf("%s\n", graph.DOT)
	return nil
}

// VizPipelineCommand prints deal counts and value per stage.
func (a *App) VizPipelineCommand(ctx context.Context, _ []string) error {
	deals, err := a.Store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return fmt.Errorf("failed to list deals: %w", err)
	}
	a.printf("%s", viz.RenderPipeline(pipeline.NewBoard(deals).Summary()))
	return nil
}

func (a *App) VizDashboardCommand(ctx context.Context, _ []string) error {
	stats, err := viz.GenerateDashboardStats(ctx, a.Store, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	a.printf("%s", viz.RenderDashboard(stats))
	return nil
}
