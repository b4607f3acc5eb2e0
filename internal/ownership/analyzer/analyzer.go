// Package analyzer turns a vehicle's raw ownership history into an owner
// situation: private, dealer (with the recovered lead), intermediary or sold.
package analyzer

import (
	"strings"
	"time"

	"github.com/leadflow/leadflow-backend/internal/ownership/classifier"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/extractor"
	"github.com/leadflow/leadflow-backend/pkg/textkey"
)

// Input is one vehicle to analyze
type Input struct {
	RegNr string
	// OwnerName overrides the current owner's name from the history head.
	OwnerName *string
	// SellerName is the seller named in the listing, if known.
	SellerName *string
	History    []domain.RawOwnershipEvent
}

// Result is the outcome for one vehicle
type Result struct {
	RegNr            string                  `json:"reg_nr"`
	CurrentOwner     *string                 `json:"current_owner,omitempty"`
	IsDealerOrRental bool                    `json:"is_dealer_or_rental"`
	Situation        domain.Situation        `json:"situation"`
	History          []domain.OwnershipEvent `json:"history"`
}

// Analyzer is stateless and safe for concurrent use
type Analyzer struct {
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
}

// New creates an analyzer around a classifier
func New(c *classifier.Classifier) *Analyzer {
	return &Analyzer{
		classifier: c,
		extractor:  extractor.New(c),
	}
}

// Classifier returns the classifier used by the analyzer
func (a *Analyzer) Classifier() *classifier.Classifier {
	return a.classifier
}

// Analyze classifies the current owner and, for dealers, extracts the lead.
// An unparseable history date fails the whole vehicle; no lead is guessed.
func (a *Analyzer) Analyze(in Input) (*Result, error) {
	history, err := domain.ParseHistory(in.History)
	if err != nil {
		return nil, err
	}

	var head *domain.OwnershipEvent
	if len(history) > 0 {
		head = &history[0]
	}

	owner := in.OwnerName
	if blank(owner) && head != nil {
		owner = head.Name
	}

	result := &Result{
		RegNr:        strings.TrimSpace(in.RegNr),
		CurrentOwner: owner,
		History:      history,
	}
	result.IsDealerOrRental = a.classifier.IsDealerOrRental(owner, head)

	switch {
	case head != nil && a.classifier.IsIntermediaryLabel(head.OwnerTypeLabel):
		result.Situation = domain.IntermediarySituation()
	case result.IsDealerOrRental:
		lead := a.extractor.ExtractPreviousPrivateOwner(history)
		result.Situation = domain.DealerSituation(lead, headDate(head))
	case !blank(in.SellerName) && !blank(owner) && textkey.Fold(strings.TrimSpace(*in.SellerName)) != textkey.Fold(strings.TrimSpace(*owner)):
		result.Situation = domain.SoldSituation(strings.TrimSpace(*owner))
	default:
		result.Situation = domain.PrivateSituation()
	}

	return result, nil
}

func headDate(head *domain.OwnershipEvent) *time.Time {
	if head == nil {
		return nil
	}
	return head.Date
}

func blank(s *string) bool {
	return s == nil || textkey.Blank(*s)
}
