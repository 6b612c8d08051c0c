package practice

// Backdrop is the full-screen wrapper holding a session's cards and its end
// control. It is the Container the cards are bound to.
type Backdrop struct {
	cards      []*Card
	endClasses *ClassList
	onEnd      func()

	scrollLeft  int
	focusedCard *Card
	focusedSide Surface
	reflowHook  func()
	reflowCount int
	removed     bool
}

func newBackdrop(onEnd func()) *Backdrop {
	return &Backdrop{
		endClasses: NewClassList(ClassEndPractice),
		onEnd:      onEnd,
	}
}

func (b *Backdrop) attach(c *Card) { b.cards = append(b.cards, c) }

// Cards returns the cards in the backdrop in insertion order.
func (b *Backdrop) Cards() []*Card {
	out := make([]*Card, len(b.cards))
	copy(out, b.cards)
	return out
}

// Reflow implements Container.
func (b *Backdrop) Reflow() {
	b.reflowCount++
	if b.reflowHook != nil {
		b.reflowHook()
	}
}

// OnReflow registers fn to run on every reflow.
func (b *Backdrop) OnReflow(fn func()) { b.reflowHook = fn }

// Reflows returns how many reflows were forced.
func (b *Backdrop) Reflows() int { return b.reflowCount }

// Focus implements Container. Focusing scrolls the wrapper back to its left
// edge, which is what callers that care about the offset must undo.
func (b *Backdrop) Focus(c *Card, s Surface) {
	b.focusedCard = c
	b.focusedSide = s
	b.scrollLeft = 0
}

// Focused returns the focused card and surface.
func (b *Backdrop) Focused() (*Card, Surface) { return b.focusedCard, b.focusedSide }

// ScrollLeft implements Container.
func (b *Backdrop) ScrollLeft() int { return b.scrollLeft }

// SetScrollLeft implements Container.
func (b *Backdrop) SetScrollLeft(x int) { b.scrollLeft = x }

// EndClasses returns the end control's class list.
func (b *Backdrop) EndClasses() *ClassList { return b.endClasses }

// KeyDown handles keys pressed anywhere in the backdrop. Escape ends the session.
func (b *Backdrop) KeyDown(k Key) bool {
	if k != KeyEscape {
		return false
	}
	if b.onEnd != nil {
		b.onEnd()
	}
	return true
}

// ClickEmpty reacts to a click on empty backdrop space by pulsing the end
// control. It never ends the session.
func (b *Backdrop) ClickEmpty() {
	b.endClasses.Remove(ClassEndPracticeAttention)
	b.Reflow()
	b.endClasses.Add(ClassEndPracticeAttention)
}

// Removed reports whether the backdrop has been torn down.
func (b *Backdrop) Removed() bool { return b.removed }

func (b *Backdrop) remove() { b.removed = true }
