package practice

import "strings"

// CSS class vocabulary. Visual state is expressed only through these.
const (
	ClassCard                 = "fcard__card"
	ClassCardOnscreen         = "fcard__card--onscreen"
	ClassCardWrong            = "fcard__card--wrong"
	ClassCardCorrect          = "fcard__card--correct"
	ClassQuestion             = "fcard__card__question"
	ClassQuestionFlipped      = "fcard__card__question--flipped"
	ClassAnswer               = "fcard__card__answer"
	ClassAnswerFlipped        = "fcard__card__answer--flipped"
	ClassContent              = "fcard__card__content"
	ClassContentShort         = "fcard__card__content--short"
	ClassContentLong          = "fcard__card__content--long"
	ClassNav                  = "fcard__card__nav"
	ClassExamples             = "fcard__card__examples"
	ClassDisambiguation       = "fcard__card__disambiguation"
	ClassReading              = "fcard__card__reading"
	ClassWrapper              = "fcard__card__wrapper"
	ClassEndPractice          = "fcard__endPractice"
	ClassEndPracticeAttention = "fcard__endPractice--attention"
	ClassStartPractice        = "fcard__startPractise"
)

// ClassList is an ordered set of class names.
type ClassList struct {
	names []string
}

// NewClassList returns a list holding names.
func NewClassList(names ...string) *ClassList {
	cl := &ClassList{}
	for _, n := range names {
		cl.Add(n)
	}
	return cl
}

// Add inserts name if absent.
func (cl *ClassList) Add(name string) {
	if !cl.Has(name) {
		cl.names = append(cl.names, name)
	}
}

// Remove deletes name if present.
func (cl *ClassList) Remove(name string) {
	for i, n := range cl.names {
		if n == name {
			cl.names = append(cl.names[:i], cl.names[i+1:]...)
			return
		}
	}
}

// Toggle adds name when on is true and removes it otherwise.
func (cl *ClassList) Toggle(name string, on bool) {
	if on {
		cl.Add(name)
	} else {
		cl.Remove(name)
	}
}

// Has reports whether name is present.
func (cl *ClassList) Has(name string) bool {
	for _, n := range cl.names {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns a copy of the class names in insertion order.
func (cl *ClassList) Names() []string {
	out := make([]string, len(cl.names))
	copy(out, cl.names)
	return out
}

// String renders the list as a class attribute value.
func (cl *ClassList) String() string { return strings.Join(cl.names, " ") }
