// ABOUTME: Pipeline graph with one colored node per stage
// ABOUTME: Deals hang off their stage and link to their contact when known
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/pipeline"
)

// GeneratePipelineGraph renders the stage flow and every deal in it.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (*Graph, error) {
	deals, err := g.store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	contacts, err := g.store.ListContacts(ctx, db.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	names := make(map[int64]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}

	board := pipeline.NewBoard(deals)

	return render(ctx, "Deal Pipeline", func(b *builder) error {
		stageNodes := make(map[models.Stage]*cgraph.Node)
		for _, stage := range models.Stages() {
			node, err := b.node(stageNodeName(stage))
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\n%d deals, %s", stage, len(board.StageDeals(stage)), formatMoney(board.StageValue(stage))))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(stage.Color())
			node.SetFontColor("white")
			stageNodes[stage] = node
		}

		// Open stages flow left to right; negotiation ends in either close.
		flow := []models.Stage{models.StageLead, models.StageQualified, models.StageProposal, models.StageNegotiation}
		for i := 1; i < len(flow); i++ {
			if _, err := b.edge("next", stageNodes[flow[i-1]], stageNodes[flow[i]]); err != nil {
				return err
			}
		}
		for _, closed := range []models.Stage{models.StageClosedWon, models.StageClosedLost} {
			if _, err := b.edge("close", stageNodes[models.StageNegotiation], stageNodes[closed]); err != nil {
				return err
			}
		}

		contactNodes := make(map[int64]*cgraph.Node)
		for _, deal := range deals {
			stageNode, ok := stageNodes[deal.Stage]
			if !ok {
				continue
			}

			node, err := b.node(fmt.Sprintf("deal_%d", deal.ID))
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", deal.Title, formatMoney(deal.Amount())))
			node.SetShape("note")

			edge, err := b.edge("in_stage", stageNode, node)
			if err != nil {
				return err
			}
			edge.SetStyle("dashed")

			if deal.ContactID == nil {
				continue
			}
			name, ok := names[*deal.ContactID]
			if !ok {
				continue
			}
			contactNode, ok := contactNodes[*deal.ContactID]
			if !ok {
				contactNode, err = b.node(fmt.Sprintf("contact_%d", *deal.ContactID))
				if err != nil {
					return err
				}
				contactNode.SetLabel(name)
				contactNode.SetShape("ellipse")
				contactNodes[*deal.ContactID] = contactNode
			}
			contactEdge, err := b.edge("contact", node, contactNode)
			if err != nil {
				return err
			}
			contactEdge.SetStyle("dotted")
		}
		return nil
	})
}

func stageNodeName(stage models.Stage) string {
	return fmt.Sprintf("stage_%d", stage.Index())
}
