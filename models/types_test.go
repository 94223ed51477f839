// ABOUTME: Tests for CRM data models
// ABOUTME: Validates enums, stage ordering, patches, and scoring config defaults
package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesOrder(t *testing.T) {
	want := []Stage{StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}
	if diff := cmp.Diff(want, Stages()); diff != "" {
		t.Errorf("Stages() mismatch (-want +got):\n%s", diff)
	}

	for i, s := range Stages() {
		assert.Equal(t, i, s.Index())
		assert.True(t, s.Valid())
	}
}

func TestStagesReturnsCopy(t *testing.T) {
	s := Stages()
	s[0] = "Mutated"
	assert.Equal(t, StageLead, Stages()[0])
}

func TestStageInvalid(t *testing.T) {
	assert.False(t, Stage("NotAStage").Valid())
	assert.False(t, Stage("lead").Valid())
	assert.Equal(t, -1, Stage("").Index())
}

func TestStageIsClosed(t *testing.T) {
	assert.True(t, StageClosedWon.IsClosed())
	assert.True(t, StageClosedLost.IsClosed())
	assert.False(t, StageNegotiation.IsClosed())
}

func TestLookupStage(t *testing.T) {
	tests := []struct {
		in   string
		want Stage
		ok   bool
	}{
		{"Lead", StageLead, true},
		{"closed_won", StageClosedWon, true},
		{"  closed lost ", StageClosedLost, true},
		{"NEGOTIATION", StageNegotiation, true},
		{"prospecting", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupStage(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContactTypePartner.Valid())
	assert.False(t, ContactType("vendor").Valid())
	assert.True(t, IndustryOther.Valid())
	assert.False(t, Industry("mining").Valid())
	assert.True(t, CompanySizeEnterprise.Valid())
	assert.False(t, CompanySize("huge").Valid())
	assert.True(t, EngagementLow.Valid())
	assert.False(t, EngagementLevel("none").Valid())
	assert.True(t, ActivityEmail.Valid())
	assert.False(t, ActivityType("sms").Valid())
	assert.Equal(t, "Activity", ActivityType("sms").Label())
}

func TestDealAmount(t *testing.T) {
	d := Deal{}
	assert.Equal(t, 0.0, d.Amount())

	v := 1250.5
	d.Value = &v
	assert.Equal(t, 1250.5, d.Amount())
}

func TestNormalizeField(t *testing.T) {
	tests := map[string]string{
		"company_c":           "company",
		"leadScore_c":         "lead_score",
		"lead_score":          "lead_score",
		"companySize":         "company_size",
		"expectedCloseDate_c": "expected_close_date",
		"contactId_c":         "contact_id",
		"Name":                "name",
		"Tags":                "tags",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeField(in), in)
	}
}

func TestPatchFromMapDistinguishesClearFromUnchanged(t *testing.T) {
	p := PatchFromMap(map[string]any{
		"company_c":   "Acme",
		"leadScore_c": nil,
	})

	require.Len(t, p, 2)
	assert.Equal(t, SetTo("Acme"), p[FieldCompany])
	assert.Equal(t, Cleared, p[FieldLeadScore].Kind)

	_, touched := p[FieldEmail]
	assert.False(t, touched)
	assert.Equal(t, []string{FieldCompany, FieldLeadScore}, p.Changed())
}

func TestPatchChangedSkipsUnchanged(t *testing.T) {
	p := Patch{
		FieldName:  FieldDiff{},
		FieldEmail: SetTo("a@b.c"),
	}
	assert.Equal(t, []string{FieldEmail}, p.Changed())
	assert.False(t, p.IsEmpty())
	assert.True(t, p.Touches(FieldEmail))
	assert.False(t, p.Touches(FieldName))

	assert.True(t, Patch{FieldName: FieldDiff{}}.IsEmpty())
}

func TestDefaultScoringConfig(t *testing.T) {
	cfg := DefaultScoringConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 100, cfg.Criteria.CompanySize[CompanySizeEnterprise])
	assert.Equal(t, 40, cfg.Criteria.Industry[IndustryOther])
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestScoringConfigValidate(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Weights.Industry = 0.5
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "1.200")

	cfg.Weights.Industry = -0.1
	_, err = cfg.Validate()
	assert.Error(t, err)

	cfg = DefaultScoringConfig()
	cfg.Criteria.Industry["mining"] = 10
	_, err = cfg.Validate()
	assert.Error(t, err)

	cfg = DefaultScoringConfig()
	delete(cfg.Criteria.Industry, IndustryOther)
	warnings, err = cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestScoringConfigClone(t *testing.T) {
	cfg := DefaultScoringConfig()
	clone := cfg.Clone()
	clone.Criteria.Industry[IndustryFinance] = 1
	clone.Weights.Industry = 0.9

	assert.Equal(t, 85, cfg.Criteria.Industry[IndustryFinance])
	assert.Equal(t, 0.3, cfg.Weights.Industry)

	var nilCfg *ScoringConfig
	assert.Nil(t, nilCfg.Clone())
}
