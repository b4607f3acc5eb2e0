// Package extractor recovers the previous private owner of a dealer-held
// vehicle from its ownership history.
package extractor

import (
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/duration"
)

// PrivateTester decides whether a history entry is a private individual
type PrivateTester interface {
	IsPrivate(e domain.OwnershipEvent) bool
}

// Extractor walks histories with a cursor. It holds no per-call state.
type Extractor struct {
	private PrivateTester
}

// New creates an extractor
func New(private PrivateTester) *Extractor {
	return &Extractor{private: private}
}

// ExtractPreviousPrivateOwner returns the nearest private owner before the
// current one, or nil when the history has no predecessor or none of the
// predecessors is private. Older private owners are never returned.
func (x *Extractor) ExtractPreviousPrivateOwner(history []domain.OwnershipEvent) *domain.Lead {
	c := newCursor(history, x.private.IsPrivate)
	for !c.done() {
		c.advance()
	}

	if c.state != stateFound {
		return nil
	}

	owner, successor := c.match, c.successor
	return &domain.Lead{
		Name:                   owner.Name,
		PurchaseDate:           owner.Date,
		SoldDate:               successor.Date,
		Details:                owner.Details,
		OwnershipDurationLabel: duration.Label(owner.Date, successor.Date),
	}
}

type cursorState int

const (
	// stateCurrent is positioned on the current owner, index 0.
	stateCurrent cursorState = iota
	// stateSkip has stepped past the current owner without testing it.
	stateSkip
	stateScanning
	stateFound
	stateExhausted
)

// cursor moves forward through a history. successor always points at the
// entry just before pos, i.e. the owner who took over from history[pos].
type cursor struct {
	history   []domain.OwnershipEvent
	isPrivate func(domain.OwnershipEvent) bool

	state     cursorState
	pos       int
	successor *domain.OwnershipEvent
	match     *domain.OwnershipEvent
}

func newCursor(history []domain.OwnershipEvent, isPrivate func(domain.OwnershipEvent) bool) *cursor {
	return &cursor{history: history, isPrivate: isPrivate, state: stateCurrent}
}

func (c *cursor) done() bool {
	return c.state == stateFound || c.state == stateExhausted
}

func (c *cursor) advance() {
	switch c.state {
	case stateCurrent:
		if len(c.history) < 2 {
			c.state = stateExhausted
			return
		}
		c.successor = &c.history[0]
		c.state = stateSkip

	case stateSkip:
		c.pos = 1
		c.state = stateScanning

	case stateScanning:
		if c.pos >= len(c.history) {
			c.state = stateExhausted
			return
		}
		e := &c.history[c.pos]
		if c.isPrivate(*e) {
			c.match = e
			c.state = stateFound
			return
		}
		c.successor = e
		c.pos++
	}
}
