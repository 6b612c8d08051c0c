package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/messages"
	"github.com/japaniel/fcard/pkg/practice"
	"github.com/japaniel/fcard/pkg/render"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) showPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "")
}

// renderPage writes the page with the start control, the live session if
// any, and the alert message with the given id if not empty.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, alert messages.ID) {
	debugMode := s.debug || r.URL.Query().Has("debug")

	if !s.report.Supported() {
		if !debugMode {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			_, _ = w.Write(s.page.Bytes())
			return
		}
		doc, err := s.page.Parse()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		render.Debug(doc)
		if err := render.Diagnostic(doc, s.report); err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeDoc(w, status, doc)
		return
	}

	doc, err := s.page.Parse()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if debugMode {
		render.Debug(doc)
	}
	msgs, err := messages.FromDocument(doc, s.lang)
	if err != nil {
		s.logger.Warn("ignoring message overrides", "error", err)
	}
	if err := render.StartButton(doc, msgs, s.routes); err != nil {
		s.logger.Warn("start control not rendered", "error", err)
	}
	if alert != "" {
		if err := render.Alert(doc, msgs.Get(alert)); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	var renderErr error
	s.ctl.View(func(sess *practice.Session) {
		if sess != nil {
			renderErr = render.Backdrop(doc, sess, msgs, s.routes)
		}
	})
	if renderErr != nil {
		s.fail(w, r, renderErr)
		return
	}
	s.writeDoc(w, status, doc)
}

func (s *Server) writeDoc(w http.ResponseWriter, status int, doc *html.Node) {
	body, err := render.Bytes(doc)
	if err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) startPractice(w http.ResponseWriter, r *http.Request) {
	_, started, err := s.ctl.Start(func() (*fcard.Store, error) {
		doc, err := s.page.Parse()
		if err != nil {
			return nil, err
		}
		return s.deck(doc)
	})
	if errors.Is(err, fcard.ErrNoItemsFound) {
		s.logger.Warn("practice not started", "error", err)
		s.renderPage(w, r, http.StatusUnprocessableEntity, messages.NoItemsError)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !started {
		s.logger.Debug("practice already running")
	}
	s.backToPage(w, r)
}

func (s *Server) endPractice(w http.ResponseWriter, r *http.Request) {
	s.ctl.End()
	s.backToPage(w, r)
}

func (s *Server) clickBackdrop(w http.ResponseWriter, r *http.Request) {
	err := s.ctl.Do(func(sess *practice.Session) error {
		sess.Backdrop().ClickEmpty()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.backToPage(w, r)
}

type cardOp func(c *practice.Card, r *http.Request) error

func revealCard(c *practice.Card, _ *http.Request) error {
	if err := requireEnabled(c, practice.ControlReveal); err != nil {
		return err
	}
	c.Reveal()
	return nil
}

// unrevealCard shares the reveal control: both flip a card that is on screen.
func unrevealCard(c *practice.Card, _ *http.Request) error {
	if err := requireEnabled(c, practice.ControlReveal); err != nil {
		return err
	}
	c.Unreveal()
	return nil
}

func judgeCard(c *practice.Card, r *http.Request) error {
	o, err := practice.ParseOutcome(chi.URLParam(r, "outcome"))
	if err != nil {
		return err
	}
	ctl := practice.ControlWrong
	if o == practice.Correct {
		ctl = practice.ControlCorrect
	}
	if err := requireEnabled(c, ctl); err != nil {
		return err
	}
	c.Judge(o)
	return nil
}

// requireEnabled rejects stale or replayed posts for controls that are off,
// as a key press on them would be ignored.
func requireEnabled(c *practice.Card, ctl practice.Control) error {
	if !c.Enabled(ctl) {
		return fmt.Errorf("%w: %s", practice.ErrControlDisabled, ctl)
	}
	return nil
}

// cardAction runs op on the card named in the path.
func (s *Server) cardAction(op cardOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(chi.URLParam(r, "card"))
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: %q", practice.ErrUnknownCard, chi.URLParam(r, "card")))
			return
		}
		err = s.ctl.Do(func(sess *practice.Session) error {
			c, err := sess.Card(idx)
			if err != nil {
				return err
			}
			return op(c, r)
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.backToPage(w, r)
	}
}

// keyDown delivers a key press. Escape goes to the backdrop; the arrow keys
// go to the given surface of the given card.
func (s *Server) keyDown(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	key := practice.Key(r.PostForm.Get("key"))
	err := s.ctl.Do(func(sess *practice.Session) error {
		switch key {
		case practice.KeyEscape:
			sess.Backdrop().KeyDown(key)
			return nil
		case practice.KeyDown, practice.KeyLeft, practice.KeyRight:
		default:
			return fmt.Errorf("%w: unknown key %q", ErrBadRequest, key)
		}
		surface, err := practice.ParseSurface(r.PostForm.Get("surface"))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		idx, err := strconv.Atoi(r.PostForm.Get("card"))
		if err != nil {
			return fmt.Errorf("%w: %q", practice.ErrUnknownCard, r.PostForm.Get("card"))
		}
		c, err := sess.Card(idx)
		if err != nil {
			return err
		}
		if !c.KeyDown(surface, key) {
			s.logger.Debug("key ignored", "key", string(key), "surface", surface.String(), "card", idx)
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.backToPage(w, r)
}

func (s *Server) backToPage(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if r.URL.Query().Has("debug") {
		target = "/?debug"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, safeMessage(err), status)
}
