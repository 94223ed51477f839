// ABOUTME: MCP server subcommand
// ABOUTME: Registers CRM tools, resources, and prompts and serves them on stdio
package cli

import (
	"context"

	"github.com/harperreed/leadflow/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds the MCP server with every tool, resource, and prompt.
func NewMCPServer(app *App, version string) *mcp.Server {
	contactHandlers := handlers.NewContactHandlers(app.Store, app.Engine, app.Publisher)
	companyHandlers := handlers.NewCompanyHandlers(app.Store, app.Publisher)
	scoringHandlers := handlers.NewScoringHandlers(app.Store, app.Engine)
	dealHandlers := handlers.NewDealHandlers(app.Store, app.Mover, app.Publisher)
	activityHandlers := handlers.NewActivityHandlers(app.Store, app.Publisher)
	vizHandlers := handlers.NewVizHandlers(app.Store)
	resourceHandlers := handlers.NewResourceHandlers(app.Store)
	promptHandlers := handlers.NewPromptHandlers(app.Store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "leadflow",
		Version: version,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM. The lead score is calculated automatically",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, company, or email",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update fields on a contact. Null clears a field; changing scoring fields rescores the contact",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact. Requires confirm: true",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_update_contacts",
		Description: "Apply the same field changes to several contacts; failures are reported per contact",
	}, contactHandlers.BulkUpdateContacts)

	// Companies
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_company",
		Description: "Add a new company to the CRM",
	}, companyHandlers.AddCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_companies",
		Description: "Search for companies by name, industry, or contact email",
	}, companyHandlers.FindCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_company",
		Description: "Update fields on a company. Null clears a field",
	}, companyHandlers.UpdateCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_update_companies",
		Description: "Apply the same field changes to several companies; failures are reported per company",
	}, companyHandlers.BulkUpdateCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_company",
		Description: "Delete a company. Its contacts are kept. Requires confirm: true",
	}, companyHandlers.DeleteCompany)

	// Lead scoring
	mcp.AddTool(server, &mcp.Tool{
		Name:        "calculate_lead_score",
		Description: "Score a hypothetical set of contact attributes with the current scoring config",
	}, scoringHandlers.CalculateLeadScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "explain_lead_score",
		Description: "Show how a contact's lead score is made up, category by category",
	}, scoringHandlers.ExplainLeadScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recalculate_score",
		Description: "Recalculate and store one contact's lead score",
	}, scoringHandlers.RecalculateScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recalculate_all_scores",
		Description: "Recalculate and store the lead score of every contact",
	}, scoringHandlers.RecalculateAllScores)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_scoring_config",
		Description: "Get the lead scoring criteria and weights",
	}, scoringHandlers.GetScoringConfig)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_scoring_config",
		Description: "Replace the lead scoring criteria and weights, optionally rescoring every contact",
	}, scoringHandlers.SetScoringConfig)

	// Deals
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal, optionally linked to a contact",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals, optionally filtered by stage or contact",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage",
	}, dealHandlers.MoveDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_update_deals",
		Description: "Apply the same field changes to several deals; failures are reported per deal",
	}, dealHandlers.BulkUpdateDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal. Requires confirm: true",
	}, dealHandlers.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_summary",
		Description: "Deal count and value per stage, total pipeline value, and conversion rate",
	}, dealHandlers.PipelineSummary)

	// Activities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, meeting, task, or email against a contact or deal",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities, optionally only pending ones",
	}, activityHandlers.ListActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_activity",
		Description: "Mark an activity complete with an optional outcome",
	}, activityHandlers.CompleteActivity)

	// Visualization
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz graph of the pipeline or of scored leads",
	}, vizHandlers.GenerateGraph)

	for _, r := range []*mcp.Resource{
		{URI: "leadflow://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: "leadflow://companies", Name: "companies", Description: "All companies", MIMEType: "application/json"},
		{URI: "leadflow://deals", Name: "deals", Description: "All deals", MIMEType: "application/json"},
		{URI: "leadflow://pipeline", Name: "pipeline", Description: "Pipeline summary by stage", MIMEType: "application/json"},
		{URI: "leadflow://scoring-config", Name: "scoring-config", Description: "Lead scoring criteria and weights", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "leadflow://contacts/{id}",
		Name:        "contact",
		Description: "A contact with its deals and activities",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "leadflow://companies/{id}",
		Name:        "company",
		Description: "A company with the contacts whose company field names it",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "leadflow://deals/{id}",
		Name:        "deal",
		Description: "A deal with its activities",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "lead-review",
		Description: "Review a lead's score and suggest next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact to review", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Analyze the deal pipeline for bottlenecks",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, version string) error {
	return NewMCPServer(app, version).Run(ctx, &mcp.StdioTransport{})
}
