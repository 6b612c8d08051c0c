package practice

import (
	"fmt"
	"html"
	"strings"

	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/reading"
)

// State is the visibility state of a card.
type State int

const (
	Hidden State = iota
	VisibleQuestion
	VisibleAnswer
	DisappearingWrong
	DisappearingCorrect
)

func (s State) String() string {
	switch s {
	case VisibleQuestion:
		return "visible-question"
	case VisibleAnswer:
		return "visible-answer"
	case DisappearingWrong:
		return "disappearing-wrong"
	case DisappearingCorrect:
		return "disappearing-correct"
	default:
		return "hidden"
	}
}

// Container hosts cards. Focusing a surface may scroll the container.
type Container interface {
	// Reflow forces a style recalculation.
	Reflow()
	Focus(c *Card, s Surface)
	ScrollLeft() int
	SetScrollLeft(x int)
}

// JudgeFunc is notified after a card has been judged.
type JudgeFunc func(c *Card, o Outcome)

// Annotator supplies readings for Japanese text.
type Annotator interface {
	Reading(text string) string
}

// Content is what one side of a card displays.
type Content struct {
	HTML string
	Text string
	Size fcard.Size
}

// CardOption configures a Card.
type CardOption func(*Card)

// WithAnnotator shows kana readings on the answer side of Japanese questions.
func WithAnnotator(a Annotator) CardOption {
	return func(c *Card) { c.annotator = a }
}

// Card is a two-sided question/answer surface bound to a supplier.
type Card struct {
	container Container
	supplier  fcard.Supplier
	onJudged  JudgeFunc
	annotator Annotator

	classes         *ClassList
	questionClasses *ClassList
	answerClasses   *ClassList

	drawn    fcard.DrawnQuestion
	question Content
	answer   Content
	state    State
	enabled  map[Control]bool
}

// NewCard binds a card to container and supplier and draws its first question.
// onJudged is called after every Judge.
func NewCard(container Container, supplier fcard.Supplier, onJudged JudgeFunc, opts ...CardOption) (*Card, error) {
	if container == nil {
		return nil, fmt.Errorf("%w: container must not be nil", fcard.ErrInvalidArgument)
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: supplier must not be nil", fcard.ErrInvalidArgument)
	}
	if onJudged == nil {
		return nil, fmt.Errorf("%w: judge handler must not be nil", fcard.ErrInvalidArgument)
	}
	c := &Card{
		container:       container,
		supplier:        supplier,
		onJudged:        onJudged,
		classes:         NewClassList(ClassCard),
		questionClasses: NewClassList(ClassQuestion),
		answerClasses:   NewClassList(ClassAnswer, ClassAnswerFlipped),
		enabled:         map[Control]bool{ControlReveal: true, ControlWrong: true, ControlCorrect: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Refresh()
	return c, nil
}

// Refresh draws a new question and repopulates both sides, whatever the
// current visibility.
func (c *Card) Refresh() {
	c.drawn = c.supplier.DrawNext()
	c.question = c.questionContent(c.drawn)
	c.answer = c.answerContent(c.drawn)
}

func (c *Card) questionContent(q fcard.DrawnQuestion) Content {
	htm, text := q.Question.HTML, q.Question.Text
	if d := q.Question.Disambiguation; d != "" {
		htm += ` <small class="` + ClassDisambiguation + `">` + html.EscapeString(d) + `</small>`
		text += " " + d
	}
	return Content{HTML: htm, Text: text, Size: fcard.ClassifySize(text)}
}

func (c *Card) answerContent(q fcard.DrawnQuestion) Content {
	var b strings.Builder
	texts := []string{q.Item.Text}
	b.WriteString(q.Answer)

	if c.annotator != nil && reading.Applies(q.Question.Lang) {
		if r := c.annotator.Reading(q.Question.Text); r != "" {
			b.WriteString(`<p class="` + ClassReading + `" lang="ja-Hira">` + html.EscapeString(r) + `</p>`)
			texts = append(texts, r)
		}
	}

	if len(q.Examples) > 0 {
		b.WriteString(`<aside class="` + ClassExamples + `">`)
		for _, ex := range q.Examples {
			b.WriteString(ex.HTML)
			texts = append(texts, ex.Text)
		}
		b.WriteString(`</aside>`)
	}

	text := strings.Join(texts, " ")
	return Content{HTML: b.String(), Text: text, Size: fcard.ClassifySize(text)}
}

// Reveal flips the card to its answer side and focuses it.
func (c *Card) Reveal() {
	c.questionClasses.Add(ClassQuestionFlipped)
	c.answerClasses.Remove(ClassAnswerFlipped)
	if c.state == VisibleQuestion {
		c.state = VisibleAnswer
	}
	c.container.Focus(c, SurfaceAnswer)
}

// Unreveal flips the card back to its question side and focuses it without
// moving the container's horizontal scroll position.
func (c *Card) Unreveal() {
	scrollLeft := c.container.ScrollLeft()

	c.questionClasses.Remove(ClassQuestionFlipped)
	c.answerClasses.Add(ClassAnswerFlipped)
	if c.state == VisibleAnswer {
		c.state = VisibleQuestion
	}
	c.container.Focus(c, SurfaceQuestion)

	c.container.SetScrollLeft(scrollLeft)
}

// Judge styles the card's exit for o, disables its controls and notifies the
// judge handler.
func (c *Card) Judge(o Outcome) {
	if o == Correct {
		c.classes.Remove(ClassCardWrong)
		c.classes.Add(ClassCardCorrect)
		c.state = DisappearingCorrect
	} else {
		c.classes.Remove(ClassCardCorrect)
		c.classes.Add(ClassCardWrong)
		c.state = DisappearingWrong
	}
	c.classes.Remove(ClassCardOnscreen)
	c.setControls(false)
	c.onJudged(c, o)
}

// Hide ends the exit of a judged card. The outcome styling stays until the
// next Show.
func (c *Card) Hide() {
	if c.state == DisappearingWrong || c.state == DisappearingCorrect {
		c.state = Hidden
	}
}

// Show puts the card on screen with its question side up.
func (c *Card) Show() {
	c.Unreveal()
	c.classes.Remove(ClassCardWrong)
	c.classes.Remove(ClassCardCorrect)
	// Without a reflow here the on-screen transition would not run.
	c.container.Reflow()
	c.classes.Add(ClassCardOnscreen)
	c.setControls(true)
	c.state = VisibleQuestion
}

// KeyDown handles a key pressed on surface s. It reports whether the key was
// consumed, in which case the default action must be suppressed.
func (c *Card) KeyDown(s Surface, k Key) bool {
	switch {
	case s == SurfaceQuestion && k == KeyDown:
		if !c.enabled[ControlReveal] {
			return false
		}
		c.Reveal()
		return true
	case s == SurfaceAnswer && k == KeyLeft:
		if !c.enabled[ControlWrong] {
			return false
		}
		c.Judge(Wrong)
		return true
	case s == SurfaceAnswer && k == KeyRight:
		if !c.enabled[ControlCorrect] {
			return false
		}
		c.Judge(Correct)
		return true
	}
	return false
}

func (c *Card) setControls(enabled bool) {
	for _, ctl := range Controls {
		c.enabled[ctl] = enabled
	}
}

// State returns the visibility state.
func (c *Card) State() State { return c.state }

// Enabled reports whether control ctl accepts input.
func (c *Card) Enabled(ctl Control) bool { return c.enabled[ctl] }

// Drawn returns the question currently on the card.
func (c *Card) Drawn() fcard.DrawnQuestion { return c.drawn }

// Question returns the question side content.
func (c *Card) Question() Content { return c.question }

// Answer returns the answer side content.
func (c *Card) Answer() Content { return c.answer }

// Classes returns the card's class list.
func (c *Card) Classes() *ClassList { return c.classes }

// QuestionClasses returns the question surface's class list.
func (c *Card) QuestionClasses() *ClassList { return c.questionClasses }

// AnswerClasses returns the answer surface's class list.
func (c *Card) AnswerClasses() *ClassList { return c.answerClasses }

// ContentClasses returns the classes of a content section of the given size.
func ContentClasses(size fcard.Size) *ClassList {
	cl := NewClassList(ClassContent)
	cl.Toggle(ClassContentShort, size == fcard.SizeShort)
	cl.Toggle(ClassContentLong, size == fcard.SizeLong)
	return cl
}
