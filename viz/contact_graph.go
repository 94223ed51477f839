// ABOUTME: Lead graph of contacts shaded by lead score
// ABOUTME: Shows each contact's deals so hot leads with open deals stand out
package viz

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
)

// Lead score bands for node shading.
const (
	HotLeadScore  = 70
	WarmLeadScore = 40
)

// GenerateLeadGraph renders contacts with at least minScore and their deals.
func (g *GraphGenerator) GenerateLeadGraph(ctx context.Context, minScore int) (*Graph, error) {
	contacts, err := g.store.ListContacts(ctx, db.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	deals, err := g.store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	byContact := make(map[int64][]models.Deal)
	for _, d := range deals {
		if d.ContactID != nil {
			byContact[*d.ContactID] = append(byContact[*d.ContactID], d)
		}
	}

	return render(ctx, "Leads", func(b *builder) error {
		for _, c := range contacts {
			if c.Score() < minScore {
				continue
			}
			node, err := b.node(fmt.Sprintf("contact_%d", c.ID))
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\nscore %d", c.Name, c.Score()))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor(scoreColor(c.Score()))

			for _, d := range byContact[c.ID] {
				dealNode, err := b.node(fmt.Sprintf("deal_%d", d.ID))
				if err != nil {
					return err
				}
				dealNode.SetLabel(fmt.Sprintf("%s\n%s", d.Title, d.Stage))
				dealNode.SetShape("box")
				dealNode.SetColor(d.Stage.Color())

				edge, err := b.edge("deal", node, dealNode)
				if err != nil {
					return err
				}
				if d.Stage.IsClosed() {
					edge.SetStyle("dotted")
				}
			}
		}
		return nil
	})
}

func scoreColor(score int) string {
	switch {
	case score >= HotLeadScore:
		return "#FCA5A5"
	case score >= WarmLeadScore:
		return "#FDE68A"
	}
	return "#E5E7EB"
}
