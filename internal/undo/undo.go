// Package undo implements the append-only action log and undo/redo stack
// spec.md §4.14 describes. Every library mutation is recorded as an
// ActionLogEntry carrying a new ULID, a before-snapshot of the cards it
// touched, and a forward payload; undo applies the inverse and redo
// reapplies the forward payload, each flipping the entry's reversed flag.
//
// The log itself lives in internal/index's action_log table (spec.md §4.3);
// this package is the typed layer on top that (de)serializes BookCards and
// drives internal/cardstore + internal/index together so a card's on-disk
// file and its index row move in lockstep.
package undo

import (
	"encoding/json"
	"time"

	"github.com/omniscope/omniscope/internal/cardstore"
	"github.com/omniscope/omniscope/internal/index"
	"github.com/omniscope/omniscope/internal/model"
)

// Action classifies what kind of mutation an entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is the decoded, typed form of an index.ActionLogEntry.
type Entry struct {
	ID       string
	Action   Action
	Payload  *model.BookCard // the forward (post-mutation) card state; nil for ActionDelete
	Snapshot *model.BookCard // the pre-mutation card state; nil for ActionCreate
	TS       time.Time
	Reversed bool
}

// Log records mutations and replays their inverse/forward application.
type Log struct {
	idx   *index.Index
	store *cardstore.Store
}

// New returns a Log backed by idx's action_log table and store's card files.
func New(idx *index.Index, store *cardstore.Store) *Log {
	return &Log{idx: idx, store: store}
}

func encode(c *model.BookCard) []byte {
	if c == nil {
		return []byte("null")
	}
	b, _ := json.Marshal(c)
	return b
}

func decode(b []byte) *model.BookCard {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var c model.BookCard
	if err := json.Unmarshal(b, &c); err != nil {
		return nil
	}
	return &c
}

func (l *Log) append(action Action, payload, snapshot *model.BookCard) error {
	return l.idx.AppendAction(model.NewID(), string(action), encode(payload), encode(snapshot), time.Now())
}

// RecordCreate logs the creation of card: no snapshot (it didn't exist
// before), payload is the new card in full.
func (l *Log) RecordCreate(card *model.BookCard) error {
	return l.append(ActionCreate, card, nil)
}

// RecordUpdate logs a mutation of a card from before to after.
func (l *Log) RecordUpdate(before, after *model.BookCard) error {
	return l.append(ActionUpdate, after, before)
}

// RecordDelete logs the deletion of before: no forward payload (nothing
// remains to redo-apply but the deletion itself).
func (l *Log) RecordDelete(before *model.BookCard) error {
	return l.append(ActionDelete, nil, before)
}

func toEntry(e index.ActionLogEntry) Entry {
	return Entry{
		ID:       e.ID,
		Action:   Action(e.Action),
		Payload:  decode(e.Payload),
		Snapshot: decode(e.Snapshot),
		TS:       e.TS,
		Reversed: e.Reversed,
	}
}

// applyCard writes c to both the card store and the index, or removes id
// from both if c is nil.
func (l *Log) applyCard(id string, c *model.BookCard) error {
	if c == nil {
		if err := l.store.Delete(id); err != nil {
			return err
		}
		return l.idx.Delete(id)
	}
	if err := l.store.Save(c); err != nil {
		return err
	}
	return l.idx.Upsert(c)
}

func (l *Log) undoEntry(e Entry) error {
	var id string
	switch e.Action {
	case ActionCreate:
		id = e.Payload.ID
		if err := l.applyCard(id, nil); err != nil {
			return err
		}
	case ActionUpdate, ActionDelete:
		id = e.Snapshot.ID
		if err := l.applyCard(id, e.Snapshot); err != nil {
			return err
		}
	}
	return l.idx.SetReversed(e.ID, true)
}

func (l *Log) redoEntry(e Entry) error {
	switch e.Action {
	case ActionCreate, ActionUpdate:
		if err := l.applyCard(e.Payload.ID, e.Payload); err != nil {
			return err
		}
	case ActionDelete:
		if err := l.applyCard(e.Snapshot.ID, nil); err != nil {
			return err
		}
	}
	return l.idx.SetReversed(e.ID, false)
}

// Undo applies the inverse of the most recent non-reversed entry and flips
// its reversed flag. ok is false if there is nothing to undo.
func (l *Log) Undo() (ok bool, err error) {
	raw, found, err := l.idx.MostRecentUnreversed()
	if err != nil || !found {
		return false, err
	}
	e := toEntry(raw)
	if err := l.undoEntry(e); err != nil {
		return false, err
	}
	return true, nil
}

// Redo reapplies the forward payload of the most recently reversed entry
// and flips its reversed flag back. ok is false if there is nothing to redo.
func (l *Log) Redo() (ok bool, err error) {
	raw, found, err := l.idx.MostRecentReversed()
	if err != nil || !found {
		return false, err
	}
	e := toEntry(raw)
	if err := l.redoEntry(e); err != nil {
		return false, err
	}
	return true, nil
}

// Earlier undoes every unreversed entry whose timestamp falls within
// window of now, most recent first, implementing `:earlier <time>`.
func (l *Log) Earlier(window time.Duration) (int, error) {
	since := time.Now().Add(-window)
	n := 0
	for {
		raw, found, err := l.idx.MostRecentUnreversed()
		if err != nil {
			return n, err
		}
		if !found || raw.TS.Before(since) {
			return n, nil
		}
		if err := l.undoEntry(toEntry(raw)); err != nil {
			return n, err
		}
		n++
	}
}

// Later redoes every reversed entry whose timestamp falls within window of
// now, most recently reversed first, implementing `:later <time>`.
func (l *Log) Later(window time.Duration) (int, error) {
	since := time.Now().Add(-window)
	n := 0
	for {
		raw, found, err := l.idx.MostRecentReversed()
		if err != nil {
			return n, err
		}
		if !found || raw.TS.Before(since) {
			return n, nil
		}
		if err := l.redoEntry(toEntry(raw)); err != nil {
			return n, err
		}
		n++
	}
}
