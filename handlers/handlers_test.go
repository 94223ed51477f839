// ABOUTME: Tests for the MCP tool handlers
// ABOUTME: Exercises tools against a temporary SQLite store
package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/notify"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/harperreed/leadflow/scoring"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) Publish(_ context.Context, e events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	store      *db.Store
	contacts   *ContactHandlers
	companies  *CompanyHandlers
	scoring    *ScoringHandlers
	deals      *DealHandlers
	activities *ActivityHandlers
	events     *eventLog
	notes      *notify.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := db.NewStore(database)
	log := &eventLog{}
	rec := &notify.Recorder{}
	engine := scoring.NewEngine(store, scoring.WithNotifier(rec), scoring.WithPublisher(log))
	mover := pipeline.NewMover(store, rec, log, nil)

	return &fixture{
		store:      store,
		contacts:   NewContactHandlers(store, engine, log),
		companies:  NewCompanyHandlers(store, log),
		scoring:    NewScoringHandlers(store, engine),
		deals:      NewDealHandlers(store, mover, log),
		activities: NewActivityHandlers(store, log),
		events:     log,
		notes:      rec,
	}
}

func (f *fixture) addContact(t *testing.T, in AddContactInput) ContactOutput {
	t.Helper()
	_, out, err := f.contacts.AddContact(context.Background(), &mcp.CallToolRequest{}, in)
	require.NoError(t, err)
	return out
}

func enterpriseInput(name string) AddContactInput {
	return AddContactInput{
		Name:            name,
		Type:            "customer",
		Industry:        "technology",
		CompanySize:     "enterprise",
		EngagementLevel: "high",
	}
}

func TestAddContactScoresOnCreate(t *testing.T) {
	f := setup(t)

	out := f.addContact(t, enterpriseInput("Grace"))
	require.NotNil(t, out.LeadScore)
	assert.Equal(t, 72, *out.LeadScore)
	assert.Equal(t, "customer", out.Type)
	assert.Contains(t, f.events.names(), events.ContactsChanged)

	_, _, err := f.contacts.AddContact(context.Background(), nil, AddContactInput{})
	assert.Error(t, err)

	_, _, err = f.contacts.AddContact(context.Background(), nil, AddContactInput{Name: "Bad", Industry: "mining"})
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))
}

func TestFindContacts(t *testing.T) {
	f := setup(t)
	f.addContact(t, AddContactInput{Name: "Ada", Company: "Analytical"})
	f.addContact(t, AddContactInput{Name: "Bob", Company: "Builders", Type: "partner"})

	_, out, err := f.contacts.FindContacts(context.Background(), nil, FindContactsInput{Query: "analyt"})
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "Ada", out.Contacts[0].Name)

	_, out, err = f.contacts.FindContacts(context.Background(), nil, FindContactsInput{Type: "partner"})
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "Bob", out.Contacts[0].Name)
}

func TestUpdateContactClearsAndRescores(t *testing.T) {
	f := setup(t)
	c := f.addContact(t, AddContactInput{Name: "Linus", Phone: "555", Industry: "retail"})

	_, out, err := f.contacts.UpdateContact(context.Background(), nil, UpdateContactInput{
		ID:     c.ID,
		Fields: map[string]any{"phone": nil, "industry": "finance"},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Phone)
	assert.Equal(t, "finance", out.Industry)
	// lead 20*0.2 + finance 85*0.3
	require.NotNil(t, out.LeadScore)
	assert.Equal(t, 30, *out.LeadScore)

	_, _, err = f.contacts.UpdateContact(context.Background(), nil, UpdateContactInput{ID: c.ID})
	assert.Error(t, err)
}

func TestUpdateContactRejectsLeadScore(t *testing.T) {
	f := setup(t)
	c := f.addContact(t, enterpriseInput("Pinned"))

	for _, fields := range []map[string]any{{"leadScore": 999}, {"lead_score": nil}} {
		_, _, err := f.contacts.UpdateContact(context.Background(), nil, UpdateContactInput{ID: c.ID, Fields: fields})
		require.Error(t, err)
		assert.True(t, crmerr.IsValidation(err))
	}

	stored, err := f.store.GetContact(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 72, stored.Score())
}

func TestDeleteContactNeedsConfirm(t *testing.T) {
	f := setup(t)
	c := f.addContact(t, AddContactInput{Name: "Temp"})

	_, _, err := f.contacts.DeleteContact(context.Background(), nil, DeleteContactInput{ID: c.ID})
	require.Error(t, err)
	_, err = f.store.GetContact(context.Background(), c.ID)
	require.NoError(t, err)

	_, out, err := f.contacts.DeleteContact(context.Background(), nil, DeleteContactInput{ID: c.ID, Confirm: true})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, _, err = f.contacts.DeleteContact(context.Background(), nil, DeleteContactInput{ID: c.ID, Confirm: true})
	assert.True(t, crmerr.IsNotFound(err))
}

func TestBulkUpdateContacts(t *testing.T) {
	f := setup(t)
	a := f.addContact(t, AddContactInput{Name: "A", Email: "a@example.com", Company: "Old"})
	b := f.addContact(t, AddContactInput{Name: "B", Email: "b@example.com", Company: "Old"})

	_, out, err := f.contacts.BulkUpdateContacts(context.Background(), nil, BulkUpdateInput{
		IDs:    []int64{a.ID, b.ID, 999},
		Fields: map[string]any{"company_c": "Acme", "leadScore_c": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.UpdatedCount)
	assert.Equal(t, 1, out.FailedCount)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, int64(999), out.Failures[0].ID)

	for _, c := range out.Contacts {
		assert.Equal(t, "Acme", c.Company)
		assert.Nil(t, c.LeadScore)
		assert.NotEmpty(t, c.Email)
	}
}

func TestScoringTools(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, calc, err := f.scoring.CalculateLeadScore(ctx, nil, CalculateLeadScoreInput{Industry: "aerospace"})
	require.NoError(t, err)
	assert.Equal(t, 12, calc.Score)

	c := f.addContact(t, enterpriseInput("Ada"))

	cfg := models.DefaultScoringConfig()
	cfg.Weights.Industry = 0.5
	_, set, err := f.scoring.SetScoringConfig(ctx, nil, SetScoringConfigInput{Config: *cfg})
	require.NoError(t, err)
	require.Len(t, set.Warnings, 1)
	assert.Contains(t, set.Warnings[0], "weights sum to 1.200")

	_, explain, err := f.scoring.ExplainLeadScore(ctx, nil, ContactIDInput{ID: c.ID})
	require.NoError(t, err)
	assert.False(t, explain.Current)
	// 30 + 10 + 40 + 8
	assert.Equal(t, 88, explain.Breakdown.Score)

	_, all, err := f.scoring.RecalculateAllScores(ctx, nil, RecalculateAllScoresInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Updated)
	assert.Zero(t, all.Failed)
	assert.NotEmpty(t, all.RunID)

	_, got, err := f.scoring.GetScoringConfig(ctx, nil, GetScoringConfigInput{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Config.Weights.Industry)

	_, recalc, err := f.scoring.RecalculateScore(ctx, nil, ContactIDInput{ID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 88, *recalc.LeadScore)

	_, _, err = f.scoring.RecalculateScore(ctx, nil, ContactIDInput{ID: 404})
	assert.True(t, crmerr.IsNotFound(err))
}

func TestSetScoringConfigRejectsNegativeWeight(t *testing.T) {
	f := setup(t)

	cfg := models.DefaultScoringConfig()
	cfg.Weights.ContactType = -1
	_, _, err := f.scoring.SetScoringConfig(context.Background(), nil, SetScoringConfigInput{Config: *cfg})
	assert.Error(t, err)
}

func TestDealTools(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	value := 1000.0
	_, deal, err := f.deals.CreateDeal(ctx, nil, CreateDealInput{Title: "Pilot", Value: &value, ExpectedCloseDate: "2026-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "Lead", deal.Stage)
	require.NotNil(t, deal.ExpectedCloseDate)

	_, _, err = f.deals.CreateDeal(ctx, nil, CreateDealInput{Title: "Nope", Stage: "Won"})
	assert.True(t, crmerr.IsInvalidStage(err))

	_, moved, err := f.deals.MoveDeal(ctx, nil, MoveDealInput{ID: deal.ID, Stage: "closed_won"})
	require.NoError(t, err)
	assert.Equal(t, "Closed Won", moved.Stage)

	msgs := f.notes.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "Deal moved to Closed Won", msgs[len(msgs)-1].Text)

	_, _, err = f.deals.MoveDeal(ctx, nil, MoveDealInput{ID: deal.ID, Stage: "Nowhere"})
	assert.True(t, crmerr.IsInvalidStage(err))

	_, list, err := f.deals.ListDeals(ctx, nil, ListDealsInput{Stage: "Closed Won"})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)

	_, summary, err := f.deals.PipelineSummary(ctx, nil, PipelineSummaryInput{})
	require.NoError(t, err)
	assert.Equal(t, 100, summary.ConversionRate)
	assert.Equal(t, 1000.0, summary.TotalValue)

	_, bulk, err := f.deals.BulkUpdateDeals(ctx, nil, BulkUpdateInput{
		IDs:    []int64{deal.ID},
		Fields: map[string]any{"stage": "negotiation", "value": nil},
	})
	require.NoError(t, err)
	require.Len(t, bulk.Deals, 1)
	assert.Equal(t, "Negotiation", bulk.Deals[0].Stage)
	assert.Nil(t, bulk.Deals[0].Value)

	_, _, err = f.deals.DeleteDeal(ctx, nil, DeleteDealInput{ID: deal.ID})
	assert.Error(t, err)
	_, del, err := f.deals.DeleteDeal(ctx, nil, DeleteDealInput{ID: deal.ID, Confirm: true})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	assert.Contains(t, f.events.names(), events.DealsChanged)
}

func TestActivityTools(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.addContact(t, AddContactInput{Name: "Ada"})

	_, a, err := f.activities.LogActivity(ctx, nil, LogActivityInput{
		Type: "call", Title: "Intro", DueDate: "2026-01-02", ContactID: &c.ID,
	})
	require.NoError(t, err)
	assert.False(t, a.Completed)

	_, _, err = f.activities.LogActivity(ctx, nil, LogActivityInput{Type: "fax", Title: "Old"})
	assert.True(t, crmerr.IsValidation(err))

	_, done, err := f.activities.CompleteActivity(ctx, nil, CompleteActivityInput{ID: a.ID, Outcome: "Booked demo"})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, "Booked demo", done.Outcome)

	_, pending, err := f.activities.ListActivities(ctx, nil, ListActivitiesInput{PendingOnly: true})
	require.NoError(t, err)
	assert.Empty(t, pending.Activities)

	_, all, err := f.activities.ListActivities(ctx, nil, ListActivitiesInput{ContactID: &c.ID})
	require.NoError(t, err)
	assert.Len(t, all.Activities, 1)

	assert.Contains(t, f.events.names(), events.ActivitiesChanged)
}

func TestCompanyTools(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, acme, err := f.companies.AddCompany(ctx, nil, AddCompanyInput{Name: "Acme", Website: "acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "other", acme.Industry)
	assert.Equal(t, "small", acme.CompanySize)

	_, _, err = f.companies.AddCompany(ctx, nil, AddCompanyInput{})
	assert.Error(t, err)
	_, _, err = f.companies.AddCompany(ctx, nil, AddCompanyInput{Name: "Bad", CompanySize: "huge"})
	assert.True(t, crmerr.IsValidation(err))

	_, globex, err := f.companies.AddCompany(ctx, nil, AddCompanyInput{Name: "Globex", Industry: "finance"})
	require.NoError(t, err)

	_, found, err := f.companies.FindCompanies(ctx, nil, FindCompaniesInput{Query: "glob"})
	require.NoError(t, err)
	require.Len(t, found.Companies, 1)
	assert.Equal(t, globex.ID, found.Companies[0].ID)

	_, updated, err := f.companies.UpdateCompany(ctx, nil, UpdateCompanyInput{
		ID:     acme.ID,
		Fields: map[string]any{"website_c": nil, "industry_c": "retail"},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Website)
	assert.Equal(t, "retail", updated.Industry)

	_, bulk, err := f.companies.BulkUpdateCompanies(ctx, nil, BulkUpdateInput{
		IDs:    []int64{acme.ID, globex.ID, 404},
		Fields: map[string]any{"companySize": "large"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, bulk.UpdatedCount)
	require.Len(t, bulk.Failures, 1)
	assert.Equal(t, int64(404), bulk.Failures[0].ID)

	_, _, err = f.companies.DeleteCompany(ctx, nil, DeleteCompanyInput{ID: globex.ID})
	require.Error(t, err)
	_, out, err := f.companies.DeleteCompany(ctx, nil, DeleteCompanyInput{ID: globex.ID, Confirm: true})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	assert.Equal(t, []string{
		events.CompaniesChanged, events.CompaniesChanged, events.CompaniesChanged,
		events.CompaniesChanged, events.CompaniesChanged,
	}, f.events.names())
}

func TestCompanyResource(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, acme, err := f.companies.AddCompany(ctx, nil, AddCompanyInput{Name: "Acme"})
	require.NoError(t, err)
	in := enterpriseInput("Wile")
	in.Company = "ACME"
	f.addContact(t, in)
	f.addContact(t, enterpriseInput("Unrelated"))

	h := NewResourceHandlers(f.store)
	res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{
		URI: fmt.Sprintf("leadflow://companies/%d", acme.ID),
	}})
	require.NoError(t, err)
	text := res.Contents[0].Text
	assert.Contains(t, text, `"Wile"`)
	assert.NotContains(t, text, `"Unrelated"`)

	res, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "leadflow://companies"}})
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"Acme"`)

	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "leadflow://companies/99"}})
	assert.Error(t, err)
}

func TestResources(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.addContact(t, enterpriseInput("Ada"))
	_, _, err := f.deals.CreateDeal(ctx, nil, CreateDealInput{Title: "Engine", ContactID: &c.ID})
	require.NoError(t, err)

	h := NewResourceHandlers(f.store)
	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("leadflow://contacts/1")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"Engine"`)

	res, err = read("leadflow://pipeline")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"total_deals": 1`)

	_, err = read("leadflow://scoring-config")
	require.NoError(t, err)

	_, err = read("crm://contacts")
	assert.Error(t, err)
	_, err = read("leadflow://contacts/abc")
	assert.Error(t, err)
	_, err = read("leadflow://widgets")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addContact(t, enterpriseInput("Ada"))

	h := NewPromptHandlers(f.store)
	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "lead-review",
		Arguments: map[string]string{"contact_id": "1"},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Lead score: 72")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "lead-review"}})
	assert.Error(t, err)

	res, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "pipeline-review"}})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "conversion rate: 0%")
}

func TestGenerateGraph(t *testing.T) {
	f := setup(t)
	h := NewVizHandlers(f.store)

	_, out, err := h.GenerateGraph(context.Background(), nil, GenerateGraphInput{})
	require.NoError(t, err)
	assert.Equal(t, "pipeline", out.GraphType)
	assert.Equal(t, 6, out.NodeCount)

	_, _, err = h.GenerateGraph(context.Background(), nil, GenerateGraphInput{Type: "org"})
	assert.Error(t, err)
}
