package practice

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/japaniel/fcard/pkg/fcard"
)

// Session is one practice run: two cards taking turns over one supplier.
type Session struct {
	ID       uuid.UUID
	backdrop *Backdrop
	cards    [2]*Card
	active   int
	judged   map[Outcome]int
	logger   *slog.Logger
}

func newSession(supplier fcard.Supplier, onEnd func(), logger *slog.Logger, opts ...CardOption) (*Session, error) {
	s := &Session{
		ID:       uuid.New(),
		backdrop: newBackdrop(onEnd),
		judged:   make(map[Outcome]int),
		logger:   logger,
	}
	for i := range s.cards {
		c, err := NewCard(s.backdrop, supplier, s.advance, opts...)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		s.cards[i] = c
		s.backdrop.attach(c)
	}
	s.cards[s.active].Show()
	return s, nil
}

// advance rotates to the other card, refreshes it and shows it, then hides
// the judged card.
// Verdicts on a card that is no longer active are ignored.
func (s *Session) advance(c *Card, o Outcome) {
	if c != s.cards[s.active] {
		s.logger.Debug("ignoring verdict on inactive card", "session", s.ID)
		return
	}
	s.judged[o]++
	s.active = (s.active + 1) % len(s.cards)
	next := s.cards[s.active]
	next.Refresh()
	next.Show()
	c.Hide()
	s.logger.Debug("rotated card", "session", s.ID, "outcome", o.String(), "active", s.active)
}

// Card returns card i (0 or 1).
func (s *Session) Card(i int) (*Card, error) {
	if i < 0 || i >= len(s.cards) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCard, i)
	}
	return s.cards[i], nil
}

// Cards returns both cards.
func (s *Session) Cards() []*Card { return s.cards[:] }

// Active returns the index of the card on screen.
func (s *Session) Active() int { return s.active }

// ActiveCard returns the card on screen.
func (s *Session) ActiveCard() *Card { return s.cards[s.active] }

// Backdrop returns the session's backdrop.
func (s *Session) Backdrop() *Backdrop { return s.backdrop }

// Judged returns how many answers were judged with o during this session.
func (s *Session) Judged(o Outcome) int { return s.judged[o] }

// StoreFunc builds the item store for a new session, typically by scanning the page.
type StoreFunc func() (*fcard.Store, error)

// Controller owns at most one live session.
type Controller struct {
	// NewRand returns the randomness source for a new session's supplier. nil uses a time-seeded source.
	NewRand func() *rand.Rand
	// CardOptions apply to every card created.
	CardOptions []CardOption
	Logger      *slog.Logger

	mu      sync.Mutex
	session *Session
}

// Start begins a session unless one is live, in which case that session is
// returned unchanged and started is false. A failing store leaves no session.
func (ctl *Controller) Start(build StoreFunc) (s *Session, started bool, err error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.session != nil {
		return ctl.session, false, nil
	}
	store, err := build()
	if err != nil {
		return nil, false, err
	}
	var rng *rand.Rand
	if ctl.NewRand != nil {
		rng = ctl.NewRand()
	}
	supplier, err := fcard.NewRandomSupplier(store, rng)
	if err != nil {
		return nil, false, err
	}
	return ctl.startLocked(supplier, store.Len())
}

// StartWith begins a session over an explicit supplier.
func (ctl *Controller) StartWith(supplier fcard.Supplier) (*Session, bool, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.session != nil {
		return ctl.session, false, nil
	}
	return ctl.startLocked(supplier, -1)
}

func (ctl *Controller) startLocked(supplier fcard.Supplier, items int) (*Session, bool, error) {
	s, err := newSession(supplier, func() { ctl.endLocked() }, ctl.logger(), ctl.CardOptions...)
	if err != nil {
		return nil, false, err
	}
	ctl.session = s
	ctl.logger().Info("practice started", "session", s.ID, "items", items)
	return s, true, nil
}

// End tears the live session down. It reports whether there was one.
func (ctl *Controller) End() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.endLocked()
}

func (ctl *Controller) endLocked() bool {
	if ctl.session == nil {
		return false
	}
	s := ctl.session
	s.backdrop.remove()
	ctl.session = nil
	ctl.logger().Info("practice ended", "session", s.ID,
		"correct", s.Judged(Correct), "wrong", s.Judged(Wrong))
	return true
}

// Do runs fn on the live session while holding the controller lock, so that
// session operations never interleave. Escape handled inside fn ends the session.
func (ctl *Controller) Do(fn func(s *Session) error) error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.session == nil {
		return ErrNoSession
	}
	return fn(ctl.session)
}

// Live reports whether a session is running.
func (ctl *Controller) Live() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.session != nil
}

// View runs fn with the live session, or nil, under the controller lock.
func (ctl *Controller) View(fn func(s *Session)) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	fn(ctl.session)
}

func (ctl *Controller) logger() *slog.Logger {
	if ctl.Logger != nil {
		return ctl.Logger
	}
	return slog.Default()
}
