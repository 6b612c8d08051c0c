// Package render writes the practice widget into a page.
//
// Every function works on a parsed document; callers parse a fresh tree per
// response and serialize it with Write.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-shiori/dom"
	"github.com/japaniel/fcard/pkg/env"
	"github.com/japaniel/fcard/pkg/messages"
	"github.com/japaniel/fcard/pkg/practice"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup attributes written or looked up by the renderer.
const (
	AttrPlaceholder = "data-fcard-place-for-start-practice-button"
	AttrActive      = "data-fcard-active"
	AttrCard        = "data-fcard-card"
	ActionsFormID   = "fcard-actions"
)

// ErrNoPlaceholder is returned when the page has no start-control placeholder.
var ErrNoPlaceholder = errors.New("render: no start practice placeholder")

// Routes are the form actions the rendered controls post to.
type Routes struct {
	Start    string
	End      string
	Backdrop string
	// Card returns the action for a card operation ("reveal", "unreveal",
	// "judge/wrong", "judge/correct").
	Card func(card int, op string) string
}

// DefaultRoutes matches the server's router.
var DefaultRoutes = Routes{
	Start:    "/practice/start",
	End:      "/practice/end",
	Backdrop: "/practice/backdrop",
	Card: func(card int, op string) string {
		return "/practice/cards/" + strconv.Itoa(card) + "/" + op
	},
}

// StartButton injects the start control into the placeholder element.
func StartButton(doc *html.Node, msgs messages.Catalog, routes Routes) error {
	place := dom.QuerySelector(doc, "["+AttrPlaceholder+"]")
	if place == nil {
		return ErrNoPlaceholder
	}
	form := dom.CreateElement("form")
	dom.SetAttribute(form, "method", "post")
	dom.SetAttribute(form, "action", routes.Start)

	button := dom.CreateElement("button")
	dom.SetAttribute(button, "type", "submit")
	dom.SetAttribute(button, "class", practice.ClassStartPractice)
	dom.SetTextContent(button, msgs.Get(messages.StartPractice))

	dom.AppendChild(form, button)
	dom.AppendChild(place, form)
	return nil
}

// Backdrop appends the full-screen backdrop with both cards of s to the body
// and marks the body active.
func Backdrop(doc *html.Node, s *practice.Session, msgs messages.Catalog, routes Routes) error {
	body := dom.QuerySelector(doc, "body")
	if body == nil {
		return fmt.Errorf("render: document has no body")
	}
	dom.SetAttribute(body, AttrActive, "true")

	b := s.Backdrop()
	section := dom.CreateElement("section")
	dom.SetAttribute(section, "class", practice.ClassWrapper)
	dom.SetAttribute(section, "data-fcard-session", s.ID.String())

	form := dom.CreateElement("form")
	dom.SetAttribute(form, "id", ActionsFormID)
	dom.SetAttribute(form, "method", "post")
	dom.AppendChild(section, form)

	dom.AppendChild(section, button(b.EndClasses().String(), msgs.Get(messages.EndPractice), routes.End, true))

	focusedCard, focusedSide := b.Focused()
	for i, c := range s.Cards() {
		el, err := card(i, c, msgs, routes)
		if err != nil {
			return err
		}
		if c == focusedCard && i == s.Active() {
			markFocus(el, focusedSide)
		}
		dom.AppendChild(section, el)
	}

	dom.AppendChild(body, section)
	return nil
}

func card(i int, c *practice.Card, msgs messages.Catalog, routes Routes) (*html.Node, error) {
	dl := dom.CreateElement("dl")
	dom.SetAttribute(dl, "class", c.Classes().String())
	dom.SetAttribute(dl, AttrCard, strconv.Itoa(i))

	questionCard := dom.CreateElement("dd")
	dom.SetAttribute(questionCard, "class", c.QuestionClasses().String())
	dom.SetAttribute(questionCard, "tabindex", "1")
	question, err := content(c.Question())
	if err != nil {
		return nil, fmt.Errorf("card %d question: %w", i, err)
	}
	dom.AppendChild(questionCard, question)
	dom.AppendChild(questionCard, nav(
		button("", msgs.Get(messages.RevealAnswer), routes.Card(i, "reveal"), c.Enabled(practice.ControlReveal)),
	))

	answerCard := dom.CreateElement("dt")
	dom.SetAttribute(answerCard, "class", c.AnswerClasses().String())
	dom.SetAttribute(answerCard, "tabindex", "1")
	answer, err := content(c.Answer())
	if err != nil {
		return nil, fmt.Errorf("card %d answer: %w", i, err)
	}
	dom.AppendChild(answerCard, answer)
	dom.AppendChild(answerCard, nav(
		button("", msgs.Get(messages.GotItWrong), routes.Card(i, "judge/wrong"), c.Enabled(practice.ControlWrong)),
		button("", msgs.Get(messages.GotItCorrect), routes.Card(i, "judge/correct"), c.Enabled(practice.ControlCorrect)),
	))

	dom.AppendChild(dl, questionCard)
	dom.AppendChild(dl, answerCard)
	return dl, nil
}

func content(c practice.Content) (*html.Node, error) {
	section := dom.CreateElement("section")
	dom.SetAttribute(section, "class", practice.ContentClasses(c.Size).String())
	if err := setInnerHTML(section, c.HTML); err != nil {
		return nil, err
	}
	return section, nil
}

func nav(buttons ...*html.Node) *html.Node {
	n := dom.CreateElement("nav")
	dom.SetAttribute(n, "class", practice.ClassNav)
	for _, b := range buttons {
		dom.AppendChild(n, b)
	}
	return n
}

func button(class, label, action string, enabled bool) *html.Node {
	b := dom.CreateElement("button")
	dom.SetAttribute(b, "type", "submit")
	if class != "" {
		dom.SetAttribute(b, "class", class)
	}
	dom.SetAttribute(b, "form", ActionsFormID)
	dom.SetAttribute(b, "formaction", action)
	if !enabled {
		dom.SetAttribute(b, "disabled", "")
	}
	dom.SetTextContent(b, label)
	return b
}

func markFocus(dl *html.Node, side practice.Surface) {
	tag := "dd"
	if side == practice.SurfaceAnswer {
		tag = "dt"
	}
	for child := dl.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag {
			dom.SetAttribute(child, "autofocus", "")
		}
	}
}

// Alert shows message as a blocking notification at the top of the body.
func Alert(doc *html.Node, message string) error {
	body := dom.QuerySelector(doc, "body")
	if body == nil {
		return fmt.Errorf("render: document has no body")
	}
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", "alert")
	dom.SetAttribute(div, "class", "fcard__alert")
	dom.SetTextContent(div, message)
	body.InsertBefore(div, body.FirstChild)
	return nil
}

// Debug marks the root element with the debug class.
func Debug(doc *html.Node) {
	root := dom.QuerySelector(doc, "html")
	if root == nil {
		return
	}
	classes := strings.Fields(dom.GetAttribute(root, "class"))
	for _, c := range classes {
		if c == "debug" {
			return
		}
	}
	dom.SetAttribute(root, "class", strings.Join(append(classes, "debug"), " "))
}

// Diagnostic reports every missing capability as a blocking notification.
func Diagnostic(doc *html.Node, report env.Report) error {
	if report.Supported() {
		return nil
	}
	return Alert(doc, report.Diagnostic())
}

// Write serializes doc to w.
func Write(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// Bytes serializes doc.
func Bytes(doc *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setInnerHTML(n *html.Node, raw string) error {
	context := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: atom.Lookup([]byte(n.Data))}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	for _, child := range nodes {
		dom.AppendChild(n, child)
	}
	return nil
}
