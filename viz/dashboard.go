// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Pipeline bars, lead score bands, and activities needing attention
package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/pipeline"
)

// topLeadCount is how many leads the dashboard lists.
const topLeadCount = 5

type DashboardStats struct {
	Pipeline pipeline.Summary

	TotalContacts int
	HotLeads      int
	WarmLeads     int
	AverageScore  float64
	TopLeads      []LeadItem

	PendingActivities int
	OverdueActivities []ActivityItem
}

type LeadItem struct {
	Name    string
	Company string
	Score   int
}

type ActivityItem struct {
	Title    string
	Type     models.ActivityType
	DaysLate int
}

// GenerateDashboardStats collects dashboard numbers as of now.
func GenerateDashboardStats(ctx context.Context, store Store, now time.Time) (*DashboardStats, error) {
	deals, err := store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	contacts, err := store.ListContacts(ctx, db.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	pending, err := store.ListActivities(ctx, db.ActivityFilter{PendingOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	stats := &DashboardStats{
		Pipeline:          pipeline.NewBoard(deals).Summary(),
		TotalContacts:     len(contacts),
		PendingActivities: len(pending),
	}

	var scoreTotal int
	leads := make([]LeadItem, 0, len(contacts))
	for _, c := range contacts {
		score := c.Score()
		scoreTotal += score
		switch {
		case score >= HotLeadScore:
			stats.HotLeads++
		case score >= WarmLeadScore:
			stats.WarmLeads++
		}
		leads = append(leads, LeadItem{Name: c.Name, Company: c.Company, Score: score})
	}
	if len(contacts) > 0 {
		stats.AverageScore = float64(scoreTotal) / float64(len(contacts))
	}

	sort.SliceStable(leads, func(i, j int) bool { return leads[i].Score > leads[j].Score })
	if len(leads) > topLeadCount {
		leads = leads[:topLeadCount]
	}
	stats.TopLeads = leads

	for _, a := range pending {
		if a.DueDate == nil || !a.DueDate.Before(now) {
			continue
		}
		stats.OverdueActivities = append(stats.OverdueActivities, ActivityItem{
			Title:    a.Title,
			Type:     a.Type,
			DaysLate: int(now.Sub(*a.DueDate).Hours() / 24),
		})
	}

	return stats, nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  " + headerStyle.Render("LEADFLOW DASHBOARD") + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString(sectionStyle.Render("PIPELINE") + "\n")
	out.WriteString(RenderPipeline(stats.Pipeline))
	out.WriteString("\n")

	out.WriteString(sectionStyle.Render("LEADS") + "\n")
	out.WriteString(fmt.Sprintf("  %d contacts  %d hot  %d warm  avg score %.1f\n",
		stats.TotalContacts, stats.HotLeads, stats.WarmLeads, stats.AverageScore))
	for _, l := range stats.TopLeads {
		name := l.Name
		if l.Company != "" {
			name += " (" + l.Company + ")"
		}
		out.WriteString(fmt.Sprintf("  %3d  %s\n", l.Score, name))
	}
	out.WriteString("\n")

	out.WriteString(sectionStyle.Render("ACTIVITIES") + "\n")
	out.WriteString(fmt.Sprintf("  %d pending\n", stats.PendingActivities))
	for _, a := range stats.OverdueActivities {
		out.WriteString("  " + warnStyle.Render(fmt.Sprintf("⚠️  %s %q overdue by %d days", a.Type.Label(), a.Title, a.DaysLate)) + "\n")
	}

	return out.String()
}

// RenderPipeline draws one bar per stage plus totals.
func RenderPipeline(summary pipeline.Summary) string {
	var out strings.Builder

	maxCount := 0
	for _, row := range summary.Stages {
		if row.Count > maxCount {
			maxCount = row.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, row := range summary.Stages {
		barLength := (row.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		bar = lipgloss.NewStyle().Foreground(lipgloss.Color(row.Stage.Color())).Render(bar)

		out.WriteString(fmt.Sprintf("  %-12s %s %3d  %8s  %5.1f%%\n",
			row.Stage, bar, row.Count, formatMoney(row.Value), row.CountPercent))
	}

	out.WriteString(fmt.Sprintf("  Total: %d deals, %s (%s open), %d%% won\n",
		summary.TotalDeals, formatMoney(summary.TotalValue), formatMoney(summary.OpenValue), summary.ConversionRate))
	return out.String()
}
