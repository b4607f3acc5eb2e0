package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/pkg/errors"
)

// State is a workflow state
type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
	StateReported State = "reported"
	StateFailed   State = "failed"
	StateDeleting State = "deleting"
	StateDeleted  State = "deleted"
)

// DuplicateReport is the reviewable result of a duplicate check
type DuplicateReport struct {
	Summary
	Criteria domain.MatchCriteria `json:"criteria"`
	Results  []domain.MatchResult `json:"results"`
	// MissingIDs are requested candidate ids that were not in the population.
	MissingIDs []string  `json:"missing_ids,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// DeleteOutcome reports what a confirmed deletion removed
type DeleteOutcome struct {
	Deleted int      `json:"deleted"`
	LeadIDs []string `json:"lead_ids"`
}

// Deleter removes leads by id and returns how many rows were removed
type Deleter interface {
	DeleteLeads(ctx context.Context, ids []string) (int, error)
}

// DeleterFunc adapts a function to Deleter
type DeleterFunc func(ctx context.Context, ids []string) (int, error)

// DeleteLeads calls f
func (f DeleterFunc) DeleteLeads(ctx context.Context, ids []string) (int, error) {
	return f(ctx, ids)
}

// Workflow holds one operator's duplicate check. Nothing is ever deleted
// without an explicit ConfirmDelete call. Safe for concurrent use.
type Workflow struct {
	mu      sync.Mutex
	state   State
	report  *DuplicateReport
	lastErr error
	now     func() time.Time
}

// NewWorkflow creates an idle workflow
func NewWorkflow() *Workflow {
	return &Workflow{state: StateIdle, now: time.Now}
}

// State returns the current state
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Report returns the current report, if the last check produced one
func (w *Workflow) Report() *DuplicateReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report
}

// Err returns the error that moved the workflow to Failed, if any
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Run checks the candidate ids against population. Criteria are validated
// before the population is read. A run replaces any previous report and is
// allowed from every state except Deleting.
func (w *Workflow) Run(candidateIDs []string, population []domain.LeadRecord, criteria domain.MatchCriteria) (*DuplicateReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateDeleting {
		return nil, errors.InvalidState(string(w.state))
	}

	if !criteria.Any() {
		return nil, w.fail(errors.InvalidCriteria())
	}

	w.state = StateChecking
	w.report = nil
	w.lastErr = nil

	candidates, missing := selectCandidates(candidateIDs, population)

	results, err := FindDuplicates(candidates, population, criteria)
	if err != nil {
		return nil, w.fail(err)
	}
	if results == nil {
		results = []domain.MatchResult{}
	}

	w.report = &DuplicateReport{
		Summary:    Summarize(candidates, results),
		Criteria:   criteria,
		Results:    results,
		MissingIDs: missing,
		CheckedAt:  w.now().UTC(),
	}
	w.state = StateReported

	return w.report, nil
}

// ConfirmDelete deletes the reported duplicates through d. It requires the
// Reported state. An empty duplicate set finishes without calling d. When d
// fails the workflow returns to Reported with the report intact so the
// caller can retry.
func (w *Workflow) ConfirmDelete(ctx context.Context, d Deleter) (*DeleteOutcome, error) {
	w.mu.Lock()
	if w.state != StateReported {
		state := w.state
		w.mu.Unlock()
		return nil, errors.InvalidState(string(state))
	}

	ids := append([]string(nil), w.report.DuplicateLeadIDs...)
	if len(ids) == 0 {
		w.state = StateDeleted
		w.mu.Unlock()
		return &DeleteOutcome{Deleted: 0, LeadIDs: []string{}}, nil
	}

	w.state = StateDeleting
	w.mu.Unlock()

	deleted, err := d.DeleteLeads(ctx, ids)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = StateReported
		return nil, errors.DeleteFailed(err)
	}

	w.state = StateDeleted
	return &DeleteOutcome{Deleted: deleted, LeadIDs: ids}, nil
}

func (w *Workflow) fail(err error) error {
	w.state = StateFailed
	w.report = nil
	w.lastErr = err
	return err
}

// selectCandidates resolves ids against population in request order.
// Repeated ids are used once.
func selectCandidates(ids []string, population []domain.LeadRecord) ([]domain.LeadRecord, []string) {
	byID := make(map[string]int, len(population))
	for i := range population {
		if _, ok := byID[population[i].ID]; !ok {
			byID[population[i].ID] = i
		}
	}

	candidates := make([]domain.LeadRecord, 0, len(ids))
	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		pos, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		candidates = append(candidates, population[pos])
	}
	return candidates, missing
}
