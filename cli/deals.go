// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing deals and moving them through stages
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/pipeline"
)

// AddDealCommand adds a new deal.
func (a *App) AddDealCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("add-deal")
	title := fs.String("title", "", "Deal title (required)")
	value := fs.Float64("value", -1, "Deal value")
	stage := fs.String("stage", string(models.StageLead), "Stage")
	contactID := fs.Int64("contact", 0, "Contact ID")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Notes")
	tags := fs.String("tags", "", "Comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	st, err := pipeline.ParseStage(*stage)
	if err != nil {
		return err
	}

	deal := &models.Deal{
		Title:     *title,
		Stage:     st,
		ContactID: optionalID(*contactID),
		Notes:     *notes,
	}
	if *value >= 0 {
		deal.Value = value
	}
	if *tags != "" {
		deal.Tags = strings.Split(*tags, ",")
	}
	if *closeDate != "" {
		t, err := time.Parse("2006-01-02", *closeDate)
		if err != nil {
			return fmt.Errorf("invalid --close-date %q: use YYYY-MM-DD", *closeDate)
		}
		deal.ExpectedCloseDate = &t
	}

	if err := a.Store.CreateDeal(ctx, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.DealsChanged, "deal created", deal.ID))

	a.printf("✓ Deal created: %s (ID: %d)\n", deal.Title, deal.ID)
	a.printf("  Stage: %s\n", deal.Stage)
	if deal.Value != nil {
		a.printf("  Value: %.2f\n", *deal.Value)
	}
	return nil
}

// ListDealsCommand lists deals in board order.
func (a *App) ListDealsCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("list-deals")
	stage := fs.String("stage", "", "Filter by stage")
	contactID := fs.Int64("contact", 0, "Filter by contact ID")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.DealFilter{ContactID: optionalID(*contactID), Limit: *limit}
	if *stage != "" {
		st, err := pipeline.ParseStage(*stage)
		if err != nil {
			return err
		}
		filter.Stage = st
	}

	deals, err := a.Store.ListDeals(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list deals: %w", err)
	}

	if len(deals) == 0 {
		a.printf("No deals found\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTAGE\tVALUE\tCONTACT\tCLOSE")
	_, _ = fmt.Fprintln(w, "--\t-----\t-----\t-----\t-------\t-----")
	for _, d := range deals {
		value := "-"
		if d.Value != nil {
			value = fmt.Sprintf("%.2f", *d.Value)
		}
		contact := "-"
		if d.ContactID != nil {
			contact = strconv.FormatInt(*d.ContactID, 10)
		}
		closeDate := "-"
		if d.ExpectedCloseDate != nil {
			closeDate = d.ExpectedCloseDate.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Title, d.Stage, value, contact, closeDate)
	}
	_ = w.Flush()

	a.printf("\nTotal: %d deal(s)\n", len(deals))
	return nil
}

// MoveDealCommand moves a deal to another stage: move-deal <id> <stage>.
func (a *App) MoveDealCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("move-deal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("deal", fs)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("target stage is required")
	}

	stage, err := pipeline.ParseStage(strings.Join(fs.Args()[1:], " "))
	if err != nil {
		return err
	}

	_, err = a.Mover.MoveDealByID(ctx, id, stage)
	return err
}

// DeleteDealCommand deletes a deal after confirmation.
func (a *App) DeleteDealCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-deal")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("deal", fs)
	if err != nil {
		return err
	}

	deal, err := a.Store.GetDeal(ctx, id)
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete deal %s?", deal.Title), *yes)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.Store.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.DealsChanged, "deal deleted", id))

	a.printf("✓ Deal deleted: %s\n", deal.Title)
	return nil
}
