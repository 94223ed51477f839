// ABOUTME: Activity CLI commands
// ABOUTME: Log, list, and complete calls, meetings, tasks, and emails
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
)

// LogActivityCommand records a new activity.
func (a *App) LogActivityCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("log-activity")
	activityType := fs.String("type", "", "call, meeting, task, or email (required)")
	title := fs.String("title", "", "Title (required)")
	description := fs.String("description", "", "Details")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	contactID := fs.Int64("contact", 0, "Related contact ID")
	dealID := fs.Int64("deal", 0, "Related deal ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	activity := &models.Activity{
		Type:        models.ActivityType(*activityType),
		Title:       *title,
		Description: *description,
		ContactID:   optionalID(*contactID),
		DealID:      optionalID(*dealID),
	}
	if *due != "" {
		t, err := time.Parse("2006-01-02", *due)
		if err != nil {
			return fmt.Errorf("invalid --due %q: use YYYY-MM-DD", *due)
		}
		activity.DueDate = &t
	}

	if err := a.Store.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.ActivitiesChanged, "activity logged", activity.ID))

	a.printf("✓ Activity logged: %s (ID: %d)\n", activity.Title, activity.ID)
	return nil
}

// ListActivitiesCommand lists activities, pending first by due date with --pending.
func (a *App) ListActivitiesCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("list-activities")
	contactID := fs.Int64("contact", 0, "Filter by contact ID")
	dealID := fs.Int64("deal", 0, "Filter by deal ID")
	pending := fs.Bool("pending", false, "Only incomplete activities")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	activities, err := a.Store.ListActivities(ctx, db.ActivityFilter{
		ContactID:   optionalID(*contactID),
		DealID:      optionalID(*dealID),
		PendingOnly: *pending,
		Limit:       *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	if len(activities) == 0 {
		a.printf("No activities found\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tTITLE\tDUE\tDONE")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t---\t----")
	for _, act := range activities {
		due := "-"
		if act.DueDate != nil {
			due = act.DueDate.Format("2006-01-02")
		}
		done := " "
		if act.Completed {
			done = "✓"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", act.ID, act.Type, act.Title, due, done)
	}
	_ = w.Flush()
	return nil
}

// CompleteActivityCommand marks an activity done: complete-activity [--outcome text] <id>.
func (a *App) CompleteActivityCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("complete-activity")
	outcome := fs.String("outcome", "", "What happened")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("activity", fs)
	if err != nil {
		return err
	}

	patch := models.NewPatch().Set(models.FieldCompleted, true)
	if *outcome != "" {
		patch.Set(models.FieldOutcome, *outcome)
	}

	activity, err := a.Store.UpdateActivity(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to complete activity: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.ActivitiesChanged, "activity completed", id))

	a.printf("✓ Activity completed: %s\n", activity.Title)
	return nil
}
