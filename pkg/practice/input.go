package practice

import "fmt"

// Surface is one side of a card.
type Surface int

const (
	SurfaceNone Surface = iota
	SurfaceQuestion
	SurfaceAnswer
)

func (s Surface) String() string {
	switch s {
	case SurfaceQuestion:
		return "question"
	case SurfaceAnswer:
		return "answer"
	default:
		return "none"
	}
}

// ParseSurface parses "question" or "answer".
func ParseSurface(s string) (Surface, error) {
	switch s {
	case "question":
		return SurfaceQuestion, nil
	case "answer":
		return SurfaceAnswer, nil
	}
	return SurfaceNone, fmt.Errorf("practice: unknown surface %q", s)
}

// Key is a keyboard key name as reported by KeyboardEvent.key.
type Key string

const (
	KeyDown   Key = "ArrowDown"
	KeyLeft   Key = "ArrowLeft"
	KeyRight  Key = "ArrowRight"
	KeyEscape Key = "Escape"
)

// Outcome is the learner's own verdict on an answer.
type Outcome int

const (
	Wrong Outcome = iota
	Correct
)

func (o Outcome) String() string {
	if o == Correct {
		return "correct"
	}
	return "wrong"
}

// ParseOutcome parses "wrong" or "correct".
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "wrong":
		return Wrong, nil
	case "correct":
		return Correct, nil
	}
	return Wrong, fmt.Errorf("%w: %q", ErrBadOutcome, s)
}

// Control is an interactive button on a card.
type Control int

const (
	ControlReveal Control = iota
	ControlWrong
	ControlCorrect
)

// Controls lists every card control in rendering order.
var Controls = []Control{ControlReveal, ControlWrong, ControlCorrect}

func (c Control) String() string {
	switch c {
	case ControlReveal:
		return "reveal"
	case ControlWrong:
		return "wrong"
	case ControlCorrect:
		return "correct"
	default:
		return "unknown"
	}
}
