// Package cardstore persists BookCards as one pretty-printed JSON file per
// card (spec.md §4.2). The directory is the source of truth; the relational
// index (internal/index) is a derived projection over it.
//
// The atomic write-temp-then-rename idiom is the same one used elsewhere
// in this module for any file a reader must never observe half-written.
package cardstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/omniscope/omniscope/internal/errs"
	"github.com/omniscope/omniscope/internal/model"
)

// Store is a flat directory of "<id>.json" card files.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create card store dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save serializes card pretty-printed and writes it atomically via a
// temp-file-then-rename, so a reader never observes a partially written file.
func (s *Store) Save(card *model.BookCard) error {
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal card %q: %w", card.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".card-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp card file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write card %q: %w", card.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp card file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(card.ID)); err != nil {
		return fmt.Errorf("rename card %q into place: %w", card.ID, err)
	}
	return nil
}

// Load reads and deserializes the card with the given id.
func (s *Store) Load(id string) (*model.BookCard, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, &errs.NotFound{Kind: "card", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("read card %q: %w", id, err)
	}
	var card model.BookCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, &errs.Corrupt{Path: s.path(id), Err: err}
	}
	return &card, nil
}

// Delete idempotently removes the card file for id.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete card %q: %w", id, err)
	}
	return nil
}

// List enumerates every card in the store. A card file that fails to
// deserialize is skipped with a logged warning rather than aborting the
// whole listing (spec.md §4.2).
func (s *Store) List() ([]*model.BookCard, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list card store %q: %w", s.dir, err)
	}

	var cards []*model.BookCard
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		card, err := s.Load(id)
		if err != nil {
			log.Printf("warn: skipping unreadable card %q: %v", e.Name(), err)
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}
