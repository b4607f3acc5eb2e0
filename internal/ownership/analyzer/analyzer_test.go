package analyzer

import (
	"testing"
	"time"

	"github.com/leadflow/leadflow-backend/internal/ownership/classifier"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newAnalyzer() *Analyzer {
	return New(classifier.New(config.ClassifierConfig{
		DealerKeywords:     config.DefaultDealerKeywords,
		DealerLabels:       []string{"handlare", "finans", "leasing"},
		PrivateLabels:      []string{"privat"},
		IntermediaryLabels: []string{"förmedling"},
	}))
}

// situationProbe captures which variant was visited
type situationProbe struct {
	kind        domain.SituationKind
	lead        *domain.Lead
	dealerSince *time.Time
	boughtBy    string
}

func (p *situationProbe) Private()      { p.kind = domain.SituationPrivate }
func (p *situationProbe) Intermediary() { p.kind = domain.SituationIntermediary }
func (p *situationProbe) Dealer(lead *domain.Lead, since *time.Time) {
	p.kind, p.lead, p.dealerSince = domain.SituationDealer, lead, since
}
func (p *situationProbe) Sold(boughtBy string) { p.kind, p.boughtBy = domain.SituationSold, boughtBy }

func probe(t *testing.T, r *Result) *situationProbe {
	t.Helper()
	require.NotNil(t, r)
	p := &situationProbe{}
	r.Situation.Accept(p)
	return p
}

var dealerHistory = []domain.RawOwnershipEvent{
	{Date: "2024-03-01", Name: "Norrlands Bil AB", OwnerTypeLabel: "Bilhandlare", OwnerClass: "company"},
	{Date: "2022-01-10", Name: "Anna Andersson", OwnerClass: "person"},
	{Date: "2019-05-05", Name: "Bo Berg", OwnerClass: "person"},
}

func TestAnalyze_Dealer(t *testing.T) {
	res, err := newAnalyzer().Analyze(Input{RegNr: " ABC123 ", History: dealerHistory})
	require.NoError(t, err)

	assert.Equal(t, "ABC123", res.RegNr)
	assert.True(t, res.IsDealerOrRental)
	assert.Len(t, res.History, 3)

	p := probe(t, res)
	assert.Equal(t, domain.SituationDealer, p.kind)
	require.NotNil(t, p.lead)
	assert.Equal(t, "Anna Andersson", *p.lead.Name)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *p.dealerSince)
	assert.Equal(t, *p.dealerSince, *p.lead.SoldDate)
}

func TestAnalyze_DealerWithoutPrivatePredecessor(t *testing.T) {
	res, err := newAnalyzer().Analyze(Input{History: dealerHistory[:1]})
	require.NoError(t, err)

	p := probe(t, res)
	assert.Equal(t, domain.SituationDealer, p.kind)
	assert.Nil(t, p.lead)
}

func TestAnalyze_Intermediary(t *testing.T) {
	history := []domain.RawOwnershipEvent{
		{Date: "2024-03-01", Name: "Kvdbil Bil AB", OwnerTypeLabel: "Förmedling", OwnerClass: "company"},
		{Date: "2022-01-10", Name: "Anna", OwnerClass: "person"},
	}

	res, err := newAnalyzer().Analyze(Input{History: history})
	require.NoError(t, err)
	assert.Equal(t, domain.SituationIntermediary, probe(t, res).kind)
}

func TestAnalyze_Sold(t *testing.T) {
	history := []domain.RawOwnershipEvent{
		{Date: "2024-03-01", Name: "Cecilia Ek", OwnerClass: "person"},
		{Date: "2022-01-10", Name: "Anna", OwnerClass: "person"},
	}

	res, err := newAnalyzer().Analyze(Input{History: history, SellerName: ptr("Anna")})
	require.NoError(t, err)

	p := probe(t, res)
	assert.Equal(t, domain.SituationSold, p.kind)
	assert.Equal(t, "Cecilia Ek", p.boughtBy)
}

func TestAnalyze_Private(t *testing.T) {
	history := []domain.RawOwnershipEvent{
		{Date: "2024-03-01", Name: "Cecilia Ek", OwnerClass: "person"},
	}

	tests := []struct {
		name   string
		seller *string
	}{
		{"no seller", nil},
		{"seller is owner", ptr("CECILIA EK")},
		{"blank seller", ptr("  ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newAnalyzer().Analyze(Input{History: history, SellerName: tt.seller})
			require.NoError(t, err)
			assert.False(t, res.IsDealerOrRental)
			assert.Equal(t, domain.SituationPrivate, probe(t, res).kind)
		})
	}
}

func TestAnalyze_OwnerNameOverride(t *testing.T) {
	history := []domain.RawOwnershipEvent{
		{Date: "2024-03-01", OwnerClass: "company"},
		{Date: "2022-01-10", Name: "Anna", OwnerClass: "person"},
	}

	res, err := newAnalyzer().Analyze(Input{History: history, OwnerName: ptr("Hertz Sverige AB")})
	require.NoError(t, err)
	assert.Equal(t, "Hertz Sverige AB", *res.CurrentOwner)
	assert.Equal(t, domain.SituationDealer, probe(t, res).kind)
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	res, err := newAnalyzer().Analyze(Input{RegNr: "XYZ789"})
	require.NoError(t, err)
	assert.Nil(t, res.CurrentOwner)
	assert.Equal(t, domain.SituationPrivate, probe(t, res).kind)
}

func TestAnalyze_InvalidHistoryFailsClosed(t *testing.T) {
	history := []domain.RawOwnershipEvent{
		{Date: "2024-03-01", Name: "Norrlands Bil AB"},
		{Date: "10/01/2022", Name: "Anna", OwnerClass: "person"},
	}

	res, err := newAnalyzer().Analyze(Input{History: history})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, errors.ErrInvalidHistoryEntry))
}
