// Package dedup finds duplicate lead records and drives the
// check → report → confirm → delete workflow around them.
package dedup

import (
	"sort"

	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/textkey"
)

// index maps a comparison key to population positions, per match type
type index map[domain.MatchType]map[string][]int

// FindDuplicates compares every candidate with every population record of a
// different id on each enabled criterion. A pair that agrees on several
// fields yields one result per field. Results are ordered by candidate, then
// match type, then population order.
func FindDuplicates(candidates, population []domain.LeadRecord, criteria domain.MatchCriteria) ([]domain.MatchResult, error) {
	if !criteria.Any() {
		return nil, errors.InvalidCriteria()
	}

	idx := buildIndex(population, criteria)

	var results []domain.MatchResult
	for i := range candidates {
		c := &candidates[i]
		for _, t := range domain.MatchTypes {
			bucket, ok := idx[t]
			if !ok {
				continue
			}
			k, ok := key(t, c.Field(t))
			if !ok {
				continue
			}
			for _, pos := range bucket[k] {
				p := &population[pos]
				if p.ID == c.ID {
					continue
				}
				results = append(results, domain.MatchResult{
					LeadID:           c.ID,
					MatchedAgainstID: p.ID,
					MatchType:        t,
				})
			}
		}
	}

	return results, nil
}

func buildIndex(population []domain.LeadRecord, criteria domain.MatchCriteria) index {
	idx := make(index, len(domain.MatchTypes))
	for _, t := range domain.MatchTypes {
		if !criteria.Enabled(t) {
			continue
		}
		bucket := make(map[string][]int)
		for pos := range population {
			if k, ok := key(t, population[pos].Field(t)); ok {
				bucket[k] = append(bucket[k], pos)
			}
		}
		idx[t] = bucket
	}
	return idx
}

// key returns the comparison key for a field. Phone numbers compare exactly
// as stored; the other fields compare case-insensitively. Blank values never
// match anything.
func key(t domain.MatchType, v *string) (string, bool) {
	if v == nil || textkey.Blank(*v) {
		return "", false
	}
	if t == domain.MatchPhone {
		return *v, true
	}
	return textkey.Fold(*v), true
}

// Summary aggregates match results for a set of candidates
type Summary struct {
	CandidateCount   int                      `json:"candidate_count"`
	UniqueCount      int                      `json:"unique_count"`
	DuplicateCount   int                      `json:"duplicate_count"`
	DuplicateLeadIDs []string                 `json:"duplicate_lead_ids"`
	ByType           map[domain.MatchType]int `json:"by_type"`
}

// Summarize counts duplicates by distinct candidate id while keeping the
// per-type breakdown over all results
func Summarize(candidates []domain.LeadRecord, results []domain.MatchResult) Summary {
	byType := make(map[domain.MatchType]int)
	seen := make(map[string]struct{})
	ids := make([]string, 0)

	for _, r := range results {
		byType[r.MatchType]++
		if _, ok := seen[r.LeadID]; ok {
			continue
		}
		seen[r.LeadID] = struct{}{}
		ids = append(ids, r.LeadID)
	}
	sort.Strings(ids)

	return Summary{
		CandidateCount:   len(candidates),
		UniqueCount:      len(candidates) - len(ids),
		DuplicateCount:   len(ids),
		DuplicateLeadIDs: ids,
		ByType:           byType,
	}
}
