// ABOUTME: Company CLI commands
// ABOUTME: Human-friendly commands for managing companies and seeing their contacts
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
)

func companyFlags(fs *flag.FlagSet) map[string]*string {
	return map[string]*string{
		"name":          fs.String("name", "", "Company name"),
		"industry":      fs.String("industry", "", "Industry (default: other)"),
		"website":       fs.String("website", "", "Website (e.g., acme.com)"),
		"contact-email": fs.String("contact-email", "", "General contact email"),
		"phone-number":  fs.String("phone-number", "", "Main phone number"),
		"company-size":  fs.String("company-size", "", "startup, small, medium, large, or enterprise (default: small)"),
		"address":       fs.String("address", "", "Postal address"),
		"description":   fs.String("description", "", "What the company does"),
		"tags":          fs.String("tags", "", "Comma-separated tags"),
	}
}

// AddCompanyCommand adds a new company
func (a *App) AddCompanyCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("add-company")
	f := companyFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *f["name"] == "" {
		return fmt.Errorf("--name is required")
	}

	company := &models.Company{
		Name:         *f["name"],
		Industry:     models.Industry(*f["industry"]),
		Website:      *f["website"],
		ContactEmail: *f["contact-email"],
		PhoneNumber:  *f["phone-number"],
		CompanySize:  models.CompanySize(*f["company-size"]),
		Address:      *f["address"],
		Description:  *f["description"],
	}
	if *f["tags"] != "" {
		company.Tags = strings.Split(*f["tags"], ",")
	}

	if err := a.Store.CreateCompany(ctx, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.CompaniesChanged, "company created", company.ID))

	a.printf("✓ Company created: %s (ID: %d)\n", company.Name, company.ID)
	a.printf("  Industry: %s\n", company.Industry)
	a.printf("  Size: %s\n", company.CompanySize)
	if company.Website != "" {
		a.printf("  Website: %s\n", company.Website)
	}
	return nil
}

// ListCompaniesCommand lists companies
func (a *App) ListCompaniesCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("list-companies")
	query := fs.String("query", "", "Search by name, industry, or contact email")
	industry := fs.String("industry", "", "Filter by industry")
	sortBy := fs.String("sort", db.SortByName, "Sort by name, industry, or created")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	companies, err := a.Store.ListCompanies(ctx, db.CompanyFilter{
		Query:    *query,
		Industry: models.Industry(*industry),
		SortBy:   *sortBy,
		Limit:    *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find companies: %w", err)
	}

	if len(companies) == 0 {
		a.printf("No companies found\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tINDUSTRY\tSIZE\tWEBSITE")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t----\t-------")
	for _, c := range companies {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, dash(string(c.Industry)), dash(string(c.CompanySize)), dash(c.Website))
	}
	_ = w.Flush()

	a.printf("\nTotal: %d company(ies)\n", len(companies))
	return nil
}

// ShowCompanyCommand prints a company and the contacts that work there.
func (a *App) ShowCompanyCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("show-company")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("company", fs)
	if err != nil {
		return err
	}

	company, err := a.Store.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	contacts, err := a.Store.CompanyContacts(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to find company contacts: %w", err)
	}

	a.printf("%s\n", company.Name)
	a.printf("  Industry: %s\n", dash(string(company.Industry)))
	a.printf("  Size: %s\n", dash(string(company.CompanySize)))
	a.printf("  Website: %s\n", dash(company.Website))
	a.printf("  Email: %s\n", dash(company.ContactEmail))
	a.printf("  Phone: %s\n", dash(company.PhoneNumber))
	if company.Description != "" {
		a.printf("  %s\n", company.Description)
	}

	a.printf("\nContacts (%d):\n", len(contacts))
	for _, c := range contacts {
		score := "-"
		if c.LeadScore != nil {
			score = strconv.Itoa(*c.LeadScore)
		}
		a.printf("  %d  %s  score %s\n", c.ID, c.Name, score)
	}
	return nil
}

// UpdateCompanyCommand updates an existing company. Only flags that are passed
// change; --clear nulls fields.
func (a *App) UpdateCompanyCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("update-company")
	f := companyFlags(fs)
	clear := fs.String("clear", "", "Comma-separated fields to clear")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("company", fs)
	if err != nil {
		return err
	}

	patch := contactPatch(fs, f, *clear)
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	company, err := a.Store.UpdateCompany(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.CompaniesChanged, "company updated", id))

	a.printf("✓ Company updated: %s\n", company.Name)
	return nil
}

// DeleteCompanyCommand deletes a company after confirmation. Contacts are kept.
func (a *App) DeleteCompanyCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-company")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("company", fs)
	if err != nil {
		return err
	}

	company, err := a.Store.GetCompany(ctx, id)
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete company %s?", company.Name), *yes)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.Store.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.CompaniesChanged, "company deleted", id))

	a.printf("✓ Company deleted: %s\n", company.Name)
	return nil
}
