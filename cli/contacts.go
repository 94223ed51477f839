// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
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

// contactFlags registers the editable contact attributes on fs.
func contactFlags(fs *flag.FlagSet) map[string]*string {
	return map[string]*string{
		"name":             fs.String("name", "", "Contact name"),
		"company":          fs.String("company", "", "Company name"),
		"email":            fs.String("email", "", "Email address"),
		"phone":            fs.String("phone", "", "Phone number"),
		"address":          fs.String("address", "", "Postal address"),
		"type":             fs.String("type", "", "lead, customer, or partner"),
		"industry":         fs.String("industry", "", "Industry"),
		"company-size":     fs.String("company-size", "", "startup, small, medium, large, or enterprise"),
		"engagement-level": fs.String("engagement-level", "", "high, medium, or low"),
		"notes":            fs.String("notes", "", "Notes about the contact"),
		"tags":             fs.String("tags", "", "Comma-separated tags"),
	}
}

// AddContactCommand adds a new contact and scores it.
func (a *App) AddContactCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("add-contact")
	f := contactFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *f["name"] == "" {
		return fmt.Errorf("--name is required")
	}

	contact := &models.Contact{
		Name:            *f["name"],
		Company:         *f["company"],
		Email:           *f["email"],
		Phone:           *f["phone"],
		Address:         *f["address"],
		Type:            models.ContactType(*f["type"]),
		Industry:        models.Industry(*f["industry"]),
		CompanySize:     models.CompanySize(*f["company-size"]),
		EngagementLevel: models.EngagementLevel(*f["engagement-level"]),
		Notes:           *f["notes"],
	}
	if *f["tags"] != "" {
		contact.Tags = strings.Split(*f["tags"], ",")
	}

	cfg, err := a.Store.LoadScoringConfig(ctx)
	if err != nil {
		return err
	}
	if err := a.Engine.CreateContact(ctx, contact, cfg); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	a.printf("  ID: %d\n", contact.ID)
	if contact.Company != "" {
		a.printf("  Company: %s\n", contact.Company)
	}
	a.printf("  Lead score: %d\n", contact.Score())
	return nil
}

// ListContactsCommand lists contacts.
func (a *App) ListContactsCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("list-contacts")
	query := fs.String("query", "", "Search by name, company, or email")
	contactType := fs.String("type", "", "Filter by contact type")
	company := fs.String("company", "", "Only contacts at this company (exact name)")
	sortBy := fs.String("sort", db.SortByName, "Sort by name, company, or created")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := a.Store.ListContacts(ctx, db.ContactFilter{
		Query:   *query,
		Type:    models.ContactType(*contactType),
		Company: *company,
		SortBy:  *sortBy,
		Limit:   *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	if len(contacts) == 0 {
		a.printf("No contacts found\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tTYPE\tSCORE")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t----\t-----")
	for _, c := range contacts {
		score := "-"
		if c.LeadScore != nil {
			score = strconv.Itoa(*c.LeadScore)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, dash(c.Company), dash(c.Email), c.Type, score)
	}
	_ = w.Flush()

	a.printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// contactPatch collects the flags that were actually passed, plus --clear. Company
// updates share it.
func contactPatch(fs *flag.FlagSet, values map[string]*string, clear string) models.Patch {
	patch := models.NewPatch()
	fs.Visit(func(fl *flag.Flag) {
		if v, ok := values[fl.Name]; ok {
			patch.Set(strings.ReplaceAll(fl.Name, "-", "_"), *v)
		}
	})
	for _, field := range strings.Split(clear, ",") {
		if field = strings.TrimSpace(field); field != "" {
			patch.Clear(strings.ReplaceAll(field, "-", "_"))
		}
	}
	return patch
}

// UpdateContactCommand updates an existing contact. Only flags that are passed
// change; --clear nulls fields.
func (a *App) UpdateContactCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("update-contact")
	f := contactFlags(fs)
	clear := fs.String("clear", "", "Comma-separated fields to clear")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := parseID("contact", fs)
	if err != nil {
		return err
	}

	patch := contactPatch(fs, f, *clear)
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	cfg, err := a.Store.LoadScoringConfig(ctx)
	if err != nil {
		return err
	}
	if _, err := a.Engine.UpdateContact(ctx, id, patch, cfg); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// BulkUpdateContactsCommand applies the same changes to several contacts.
func (a *App) BulkUpdateContactsCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("bulk-update-contacts")
	f := contactFlags(fs)
	clear := fs.String("clear", "", "Comma-separated fields to clear")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := make([]int64, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid contact ID: %q", arg)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return fmt.Errorf("at least one contact ID is required")
	}

	result, err := a.Store.BulkUpdateContacts(ctx, ids, contactPatch(fs, f, *clear))
	if err != nil {
		return fmt.Errorf("failed to update contacts: %w", err)
	}

	updated := make([]int64, 0, len(result.Records))
	for _, c := range result.Records {
		updated = append(updated, c.ID)
	}
	if len(updated) > 0 {
		a.publisher().Publish(ctx, events.New(events.ContactsChanged, "bulk update", updated...))
	}

	a.printf("✓ Updated %d contact(s), %d failed\n", result.UpdatedCount, result.FailedCount)
	for _, id := range ids {
		if err, ok := result.Failures[id]; ok {
			a.printf("  ✗ %d: %v\n", id, err)
		}
	}
	return nil
}

// DeleteContactCommand deletes a contact after confirmation.
func (a *App) DeleteContactCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-contact")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
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

	ok, err := a.confirm(fmt.Sprintf("Delete contact %s?", contact.Name), *yes)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.Store.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	a.publisher().Publish(ctx, events.New(events.ContactsChanged, "contact deleted", id))

	a.printf("✓ Contact deleted: %s\n", contact.Name)
	return nil
}
