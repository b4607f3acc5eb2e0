// Package classifier decides whether a vehicle owner is a dealer or rental
// company. The decision rests on trade keywords found in the owner's name;
// registry metadata only decides whether the name is consulted a second time
// and never marks an owner as a dealer on its own.
//
// Keywords match as plain substrings of the case-folded name, so a private
// owner named "Davis Karlsson" hits the rental brand "avis". That false
// positive is a known limit of the heuristic and is not corrected here.
package classifier

import (
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/textkey"
)

// Classifier holds pre-folded keyword and label lists. It is immutable and
// safe for concurrent use.
type Classifier struct {
	dealerKeywords     []string
	dealerLabels       []string
	privateLabels      []string
	intermediaryLabels []string
}

// New builds a classifier from configuration. Each empty list falls back to
// the built-in Swedish defaults.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{
		dealerKeywords:     textkey.FoldAll(orDefault(cfg.DealerKeywords, config.DefaultDealerKeywords)),
		dealerLabels:       textkey.FoldAll(orDefault(cfg.DealerLabels, config.DefaultDealerLabels)),
		privateLabels:      textkey.FoldAll(orDefault(cfg.PrivateLabels, config.DefaultPrivateLabels)),
		intermediaryLabels: textkey.FoldAll(orDefault(cfg.IntermediaryLabels, config.DefaultIntermediaryLabels)),
	}
}

func orDefault(list, fallback []string) []string {
	if len(list) == 0 {
		return fallback
	}
	return list
}

// IsDealerOrRental classifies the owner called name. head is the most recent
// history entry for the vehicle, if known.
func (c *Classifier) IsDealerOrRental(name *string, head *domain.OwnershipEvent) bool {
	if name == nil {
		return false
	}

	if c.hasDealerKeyword(*name) {
		return true
	}

	if head != nil && (c.IsDealerLabel(head.OwnerTypeLabel) || head.OwnerClass == domain.OwnerClassCompany) {
		// Metadata says company; still require name evidence.
		return c.hasDealerKeyword(*name)
	}

	return false
}

// IsPrivate reports whether a history entry describes a private individual
func (c *Classifier) IsPrivate(e domain.OwnershipEvent) bool {
	return e.OwnerClass == domain.OwnerClassPerson || c.IsPrivateLabel(e.OwnerTypeLabel)
}

// IsDealerLabel reports whether a registry owner-type label names a
// dealer, finance or leasing category
func (c *Classifier) IsDealerLabel(label *string) bool {
	return label != nil && textkey.ContainsAny(*label, c.dealerLabels)
}

// IsPrivateLabel reports whether a registry owner-type label names a private person
func (c *Classifier) IsPrivateLabel(label *string) bool {
	return label != nil && textkey.ContainsAny(*label, c.privateLabels)
}

// IsIntermediaryLabel reports whether a registry owner-type label names a
// sales intermediary (förmedling)
func (c *Classifier) IsIntermediaryLabel(label *string) bool {
	return label != nil && textkey.ContainsAny(*label, c.intermediaryLabels)
}

func (c *Classifier) hasDealerKeyword(name string) bool {
	return textkey.ContainsAny(name, c.dealerKeywords)
}
