package fcard

import (
	"math/rand"
	"sync"
)

// Supplier hands out questions one at a time.
type Supplier interface {
	DrawNext() DrawnQuestion
}

// RandomSupplier samples with replacement: an item uniformly, then one of its
// languages uniformly, then one fragment of that language uniformly.
// Nothing is remembered between draws, so repeats are expected.
type RandomSupplier struct {
	store *Store
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewRandomSupplier creates a supplier over store. A nil rng uses a time-seeded source.
func NewRandomSupplier(store *Store, rng *rand.Rand) (*RandomSupplier, error) {
	if store == nil || store.Len() == 0 {
		return nil, ErrNoItemsFound
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &RandomSupplier{store: store, rng: rng}, nil
}

// DrawNext implements Supplier.
func (s *RandomSupplier) DrawNext() DrawnQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.store.Item(s.rng.Intn(s.store.Len()))
	lang := it.Languages[s.rng.Intn(len(it.Languages))]
	variants := it.Fragments[lang]
	return it.Question(variants[s.rng.Intn(len(variants))])
}

// FixedSupplier replays a fixed sequence of questions, wrapping around at the end.
type FixedSupplier struct {
	questions []DrawnQuestion
	next      int
}

// NewFixedSupplier creates a FixedSupplier. At least one question is required.
func NewFixedSupplier(questions ...DrawnQuestion) (*FixedSupplier, error) {
	if len(questions) == 0 {
		return nil, ErrNoItemsFound
	}
	return &FixedSupplier{questions: questions}, nil
}

// DrawNext implements Supplier.
func (s *FixedSupplier) DrawNext() DrawnQuestion {
	q := s.questions[s.next]
	s.next = (s.next + 1) % len(s.questions)
	return q
}

// Position returns the index of the question the next draw will hand out.
func (s *FixedSupplier) Position() int { return s.next }
