package dedup

import (
	"testing"

	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func lead(id, reg, chassis, name, phone string) domain.LeadRecord {
	l := domain.LeadRecord{ID: id}
	if reg != "" {
		l.RegNr = ptr(reg)
	}
	if chassis != "" {
		l.ChassisNr = ptr(chassis)
	}
	if name != "" {
		l.OwnerName = ptr(name)
	}
	if phone != "" {
		l.Phone = ptr(phone)
	}
	return l
}

var all = domain.MatchCriteria{MatchRegNr: true, MatchChassis: true, MatchName: true, MatchPhone: true}

func TestFindDuplicates_RequiresCriterion(t *testing.T) {
	c := []domain.LeadRecord{lead("a", "ABC123", "", "", "")}
	p := []domain.LeadRecord{lead("b", "ABC123", "", "", "")}

	results, err := FindDuplicates(c, p, domain.MatchCriteria{})
	assert.Nil(t, results)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCriteria))
}

func TestFindDuplicates_ExcludesSelf(t *testing.T) {
	a := lead("a", "ABC123", "YV1AB", "Anna", "070-1234567")
	results, err := FindDuplicates([]domain.LeadRecord{a}, []domain.LeadRecord{a, a}, all)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindDuplicates_MultiplicityAndAggregation(t *testing.T) {
	candidates := []domain.LeadRecord{lead("a", "ABC123", "", "Anna", "070-1234567")}
	population := []domain.LeadRecord{
		candidates[0],
		lead("b", "abc123", "", "Bo", "070-1234567"),
	}

	results, err := FindDuplicates(candidates, population, domain.MatchCriteria{MatchRegNr: true, MatchPhone: true})
	require.NoError(t, err)

	assert.Equal(t, []domain.MatchResult{
		{LeadID: "a", MatchedAgainstID: "b", MatchType: domain.MatchRegNr},
		{LeadID: "a", MatchedAgainstID: "b", MatchType: domain.MatchPhone},
	}, results)

	summary := Summarize(candidates, results)
	assert.Equal(t, []string{"a"}, summary.DuplicateLeadIDs)
	assert.Equal(t, 1, summary.DuplicateCount)
	assert.Equal(t, 0, summary.UniqueCount)
	assert.Equal(t, map[domain.MatchType]int{domain.MatchRegNr: 1, domain.MatchPhone: 1}, summary.ByType)
}

func TestFindDuplicates_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		candidate domain.LeadRecord
		other     domain.LeadRecord
		criteria  domain.MatchCriteria
		want      []domain.MatchType
	}{
		{"reg case-insensitive", lead("a", "abc123", "", "", ""), lead("b", "ABC123", "", "", ""), all, []domain.MatchType{domain.MatchRegNr}},
		{"chassis case-insensitive", lead("a", "", "yv1ab", "", ""), lead("b", "", "YV1AB", "", ""), all, []domain.MatchType{domain.MatchChassis}},
		{"name with swedish letters", lead("a", "", "", "Åsa Öberg", ""), lead("b", "", "", "ÅSA ÖBERG", ""), all, []domain.MatchType{domain.MatchName}},
		{"name is exact not fuzzy", lead("a", "", "", "Anna Andersson", ""), lead("b", "", "", "Anna Anderson", ""), all, nil},
		{"phone is exact", lead("a", "", "", "", "070-1234567"), lead("b", "", "", "", "0701234567"), all, nil},
		{"blank values never match", lead("a", " ", "", "", ""), lead("b", " ", "", "", ""), all, nil},
		{"whitespace chassis never matches", lead("a", "", "\t ", "", ""), lead("b", "", "\t ", "", ""), all, nil},
		{"whitespace name never matches", lead("a", "", "", "  ", ""), lead("b", "", "", "  ", ""), all, nil},
		{"whitespace phone never matches", lead("a", "", "", "", " "), lead("b", "", "", "", " "), all, nil},
		{"absent values never match", lead("a", "", "", "", ""), lead("b", "", "", "", ""), all, nil},
		{"disabled criterion ignored", lead("a", "ABC123", "", "", "070"), lead("b", "ABC123", "", "", "070"), domain.MatchCriteria{MatchPhone: true}, []domain.MatchType{domain.MatchPhone}},
		{"all four fields", lead("a", "ABC123", "YV1", "Anna", "070"), lead("b", "abc123", "yv1", "ANNA", "070"), all,
			[]domain.MatchType{domain.MatchRegNr, domain.MatchChassis, domain.MatchName, domain.MatchPhone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := FindDuplicates([]domain.LeadRecord{tt.candidate}, []domain.LeadRecord{tt.candidate, tt.other}, tt.criteria)
			require.NoError(t, err)

			var got []domain.MatchType
			for _, r := range results {
				assert.Equal(t, "a", r.LeadID)
				assert.Equal(t, "b", r.MatchedAgainstID)
				got = append(got, r.MatchType)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindDuplicates_MatchesEveryPopulationRecord(t *testing.T) {
	candidates := []domain.LeadRecord{lead("a", "ABC123", "", "", "")}
	population := []domain.LeadRecord{
		lead("b", "ABC123", "", "", ""),
		lead("c", "XYZ999", "", "", ""),
		lead("d", "Abc123", "", "", ""),
	}

	results, err := FindDuplicates(candidates, population, domain.MatchCriteria{MatchRegNr: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].MatchedAgainstID)
	assert.Equal(t, "d", results[1].MatchedAgainstID)
}

func TestFindDuplicates_Idempotent(t *testing.T) {
	candidates := []domain.LeadRecord{
		lead("a", "ABC123", "", "Anna", "070"),
		lead("b", "DEF456", "", "Bo", "071"),
	}
	population := append([]domain.LeadRecord{
		lead("c", "abc123", "", "bo", "070"),
		lead("d", "def456", "", "Anna", "071"),
	}, candidates...)

	first, err := FindDuplicates(candidates, population, all)
	require.NoError(t, err)
	second, err := FindDuplicates(candidates, population, all)
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSummarize_Empty(t *testing.T) {
	candidates := []domain.LeadRecord{lead("a", "", "", "", ""), lead("b", "", "", "", "")}
	s := Summarize(candidates, nil)

	assert.Equal(t, 2, s.CandidateCount)
	assert.Equal(t, 2, s.UniqueCount)
	assert.Equal(t, 0, s.DuplicateCount)
	assert.Empty(t, s.DuplicateLeadIDs)
	assert.NotNil(t, s.DuplicateLeadIDs)
}
