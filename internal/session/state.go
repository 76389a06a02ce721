package session

import "github.com/ivanvaic99/fintrack/internal/model"

// State is the in-memory mirror of the ledger, in insertion order. A State
// is never modified in place; each confirmed write produces a new one.
type State struct {
	txns []model.Transaction
}

// NewState returns a State holding a copy of txns.
func NewState(txns []model.Transaction) State {
	return State{txns: append([]model.Transaction(nil), txns...)}
}

// Transactions returns a copy of the mirrored transactions.
func (s State) Transactions() []model.Transaction {
	return append([]model.Transaction(nil), s.txns...)
}

func (s State) Len() int { return len(s.txns) }

// Find looks up a transaction by id.
func (s State) Find(id model.ID) (model.Transaction, bool) {
	for _, t := range s.txns {
		if t.ID == id {
			return t, true
		}
	}
	return model.Transaction{}, false
}

func (s State) withAdded(t model.Transaction) State {
	next := make([]model.Transaction, len(s.txns), len(s.txns)+1)
	copy(next, s.txns)
	return State{txns: append(next, t)}
}

func (s State) withoutID(id model.ID) State {
	next := make([]model.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return State{txns: next}
}
