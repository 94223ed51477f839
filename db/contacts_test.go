// ABOUTME: Tests for contact database operations
// ABOUTME: Covers CRUD, filtering, patch semantics, and bulk edits
package db

import (
	"context"
	"testing"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func createContact(t *testing.T, s *Store, c models.Contact) *models.Contact {
	t.Helper()
	require.NoError(t, s.CreateContact(context.Background(), &c))
	return &c
}

func TestCreateContactDefaultsToLead(t *testing.T) {
	s := setupTestDB(t)

	c := createContact(t, s, models.Contact{Name: "Ada Lovelace", Email: "ada@example.com"})

	assert.NotZero(t, c.ID)
	assert.Equal(t, models.ContactTypeLead, c.Type)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.GetContact(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, models.ContactTypeLead, got.Type)
	assert.Nil(t, got.LeadScore)
}

func TestCreateContactValidation(t *testing.T) {
	s := setupTestDB(t)

	err := s.CreateContact(context.Background(), &models.Contact{
		Name:     "",
		Industry: "mining",
		Email:    "not-an-email",
	})

	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))

	fields := map[string]bool{}
	for _, fe := range crmerr.FieldErrors(err) {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["industry"])
	assert.True(t, fields["email"])
}

func TestGetContactNotFound(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.GetContact(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, crmerr.IsNotFound(err))
}

func TestListContactsFilterAndSort(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	createContact(t, s, models.Contact{Name: "Zed", Company: "Acme", Type: models.ContactTypeCustomer})
	createContact(t, s, models.Contact{Name: "amy", Company: "Globex", Email: "amy@acme.io"})
	createContact(t, s, models.Contact{Name: "Bob", Company: "Initech", Type: models.ContactTypePartner})

	all, err := s.ListContacts(ctx, ContactFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"amy", "Bob", "Zed"}, names(all))

	byCompany, err := s.ListContacts(ctx, ContactFilter{SortBy: SortByCompany})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zed", "amy", "Bob"}, names(byCompany))

	acme, err := s.ListContacts(ctx, ContactFilter{Query: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "Zed"}, names(acme))

	partners, err := s.ListContacts(ctx, ContactFilter{Type: models.ContactTypePartner})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names(partners))

	limited, err := s.ListContacts(ctx, ContactFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func names(contacts []models.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Name
	}
	return out
}

func TestUpdateContactPatchSemantics(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	c := createContact(t, s, models.Contact{
		Name:      "Grace",
		Company:   "Navy",
		Email:     "grace@example.com",
		Phone:     "555-0100",
		LeadScore: intPtr(42),
	})

	patch := models.NewPatch().
		Set(models.FieldCompany, "Univac").
		Clear(models.FieldPhone)
	patch[models.FieldEmail] = models.FieldDiff{} // explicitly unchanged

	updated, err := s.UpdateContact(ctx, c.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Univac", updated.Company)
	assert.Empty(t, updated.Phone)
	assert.Equal(t, "grace@example.com", updated.Email)
	assert.Equal(t, 42, updated.Score())

	stored, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Univac", stored.Company)
	assert.Empty(t, stored.Phone)
	assert.Equal(t, "grace@example.com", stored.Email)
}

func TestUpdateContactRejectsBadEnumAndUnknownField(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	c := createContact(t, s, models.Contact{Name: "Linus"})

	_, err := s.UpdateContact(ctx, c.ID, models.NewPatch().Set(models.FieldType, "vendor"))
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))

	_, err = s.UpdateContact(ctx, c.ID, models.NewPatch().Set("owner", "me"))
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))
	require.Len(t, crmerr.FieldErrors(err), 1)
	assert.Equal(t, "owner", crmerr.FieldErrors(err)[0].Field)

	_, err = s.UpdateContact(ctx, c.ID, models.NewPatch().Clear(models.FieldName))
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))
}

func TestUpdateContactNotFound(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.UpdateContact(context.Background(), 404, models.NewPatch().Set(models.FieldName, "x"))
	require.Error(t, err)
	assert.True(t, crmerr.IsNotFound(err))
}

func TestBulkUpdateContactsSetsAndClears(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := createContact(t, s, models.Contact{Name: "A", Company: "Old", Email: "a@example.com", LeadScore: intPtr(10)})
	b := createContact(t, s, models.Contact{Name: "B", Company: "Old", Email: "b@example.com", LeadScore: intPtr(20)})

	patch := models.PatchFromMap(map[string]any{
		"company_c":   "Acme",
		"leadScore_c": nil,
	})

	result, err := s.BulkUpdateContacts(ctx, []int64{a.ID, b.ID}, patch)
	require.NoError(t, err)
	assert.Equal(t, 2, result.UpdatedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.True(t, result.Success())
	assert.Len(t, result.Records, 2)

	for id, email := range map[int64]string{a.ID: "a@example.com", b.ID: "b@example.com"} {
		got, err := s.GetContact(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Company)
		assert.Nil(t, got.LeadScore)
		assert.Equal(t, email, got.Email)
	}
}

func TestBulkUpdateContactsCountsFailures(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := createContact(t, s, models.Contact{Name: "A"})

	result, err := s.BulkUpdateContacts(ctx, []int64{a.ID, 9999}, models.NewPatch().Set(models.FieldNotes, "hi"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.False(t, result.Success())
	assert.True(t, crmerr.IsNotFound(result.Failures[9999]))
}

func TestBulkUpdateContactsRejectsEmptyPatch(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.BulkUpdateContacts(context.Background(), []int64{1}, models.NewPatch())
	require.Error(t, err)
	assert.True(t, crmerr.IsValidation(err))
}

func TestContactTagsRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	c := createContact(t, s, models.Contact{Name: "Tagged"})

	updated, err := s.UpdateContact(ctx, c.ID, models.NewPatch().Set(models.FieldTags, "vip, west ,"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "west"}, updated.Tags)

	stored, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "west"}, stored.Tags)
}

func TestDeleteContactDetachesDeals(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	c := createContact(t, s, models.Contact{Name: "Leaving"})
	deal := &models.Deal{Title: "Linked", Stage: models.StageLead, ContactID: &c.ID}
	require.NoError(t, s.CreateDeal(ctx, deal))

	require.NoError(t, s.DeleteContact(ctx, c.ID))

	_, err := s.GetContact(ctx, c.ID)
	assert.True(t, crmerr.IsNotFound(err))

	got, err := s.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ContactID)

	err = s.DeleteContact(ctx, c.ID)
	assert.True(t, crmerr.IsNotFound(err))
}
