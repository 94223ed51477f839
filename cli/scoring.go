// ABOUTME: Lead scoring CLI commands
// ABOUTME: Explain, recalculate, and view or replace the scoring config
package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/scoring"
	"gopkg.in/yaml.v3"
)

// ScoreCommand shows how a contact's lead score is made up.
func (a *App) ScoreCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("score")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("contact", fs)
	if err != nil {
		return err
	}

	contact, err := a.Store.GetContact(ctx, id)
	if err != nil {
		return err
	}
	cfg, err := a.Store.LoadScoringConfig(ctx)
	if err != nil {
		return err
	}

	b := scoring.Breakdown(*contact, cfg)
	if !b.Enabled {
		a.printf("Lead scoring is disabled\n")
		return nil
	}

	a.printf("%s\n\n", contact.Name)
	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tVALUE\tPOINTS\tWEIGHT\tWEIGHTED")
	for _, c := range b.Contributions {
		value := dash(c.Value)
		if c.Fallback {
			value += " (as other)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\n", c.Category, value, c.Points, c.Weight, c.Weighted)
	}
	_ = w.Flush()

	a.printf("\nScore: %d", b.Score)
	if contact.LeadScore == nil || *contact.LeadScore != b.Score {
		a.printf(" (stored: %s, run rescore to update)", storedScore(contact))
	}
	a.printf("\n")
	return nil
}

func storedScore(c *models.Contact) string {
	if c.LeadScore == nil {
		return "none"
	}
	return fmt.Sprint(*c.LeadScore)
}

// RescoreCommand recalculates one contact's score, or every contact with --all.
func (a *App) RescoreCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("rescore")
	all := fs.Bool("all", false, "Recalculate every contact")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.Store.LoadScoringConfig(ctx)
	if err != nil {
		return err
	}

	if !*all {
		id, err := parseID("contact", fs)
		if err != nil {
			return err
		}
		_, err = a.Engine.RecalculateScore(ctx, id, cfg)
		return err
	}

	result, err := a.Engine.RecalculateAllScoresDetailed(ctx, cfg)
	if err != nil {
		return err
	}
	for _, id := range result.FailedIDs() {
		a.printf("  ✗ %d: %v\n", id, result.Results[id])
	}
	if !result.Success() {
		return fmt.Errorf("%d contact(s) could not be rescored", result.Failed)
	}
	return nil
}

// ScoringConfigCommand prints the scoring config as YAML, or replaces it from a
// YAML file with --file.
func (a *App) ScoringConfigCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("scoring-config")
	file := fs.String("file", "", "YAML file with the new scoring config")
	reset := fs.Bool("reset", false, "Restore the default scoring config")
	recalculate := fs.Bool("recalculate", false, "Rescore every contact after saving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var next *models.ScoringConfig
	switch {
	case *reset:
		next = models.DefaultScoringConfig()
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *file, err)
		}
		next = &models.ScoringConfig{}
		if err := yaml.Unmarshal(data, next); err != nil {
			return fmt.Errorf("failed to parse %s: %w", *file, err)
		}
	default:
		cfg, err := a.Store.LoadScoringConfig(ctx)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		a.printf("%s", out)
		return nil
	}

	warnings, err := a.Store.SaveScoringConfig(ctx, next)
	if err != nil {
		return fmt.Errorf("failed to save scoring config: %w", err)
	}
	a.printf("✓ Scoring config saved\n")
	for _, w := range warnings {
		a.printf("  ⚠ %s\n", w)
	}

	if *recalculate {
		_, err := a.Engine.RecalculateAllScores(ctx, next)
		return err
	}
	return nil
}
