package fcard

import "fmt"

// Store is a read-once snapshot of the items found on a page.
// It is never mutated after construction.
type Store struct {
	items []Item
}

// NewStore validates items and snapshots them. An empty slice yields ErrNoItemsFound.
func NewStore(items []Item) (*Store, error) {
	if len(items) == 0 {
		return nil, ErrNoItemsFound
	}
	snapshot := make([]Item, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		snapshot[i] = it.Clone()
	}
	return &Store{items: snapshot}, nil
}

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// Item returns a copy of the i-th item.
func (s *Store) Item(i int) Item { return s.items[i].Clone() }

// Items returns a deep copy of the items.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}
