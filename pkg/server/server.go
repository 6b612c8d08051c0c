// Package server exposes a page and its practice session over HTTP.
//
// Every practice action is a form post that changes the session and
// redirects back to the page, which is re-rendered from the stored HTML with
// the live session on top.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/html"

	"github.com/japaniel/fcard/pkg/collect"
	"github.com/japaniel/fcard/pkg/env"
	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/page"
	"github.com/japaniel/fcard/pkg/practice"
	"github.com/japaniel/fcard/pkg/render"
)

// DeckFunc builds the item store for a new session from a fresh parse of the page.
type DeckFunc func(doc *html.Node) (*fcard.Store, error)

// Options configures a Server.
type Options struct {
	Page       *page.Page
	Report     env.Report
	Controller *practice.Controller
	// Deck defaults to scanning the page.
	Deck DeckFunc
	// Language selects messages when the page declares none.
	Language string
	// Debug renders diagnostics and panics into the page.
	Debug  bool
	Logger *slog.Logger
}

// Server serves one page.
type Server struct {
	page   *page.Page
	report env.Report
	ctl    *practice.Controller
	deck   DeckFunc
	lang   string
	debug  bool
	routes render.Routes
	logger *slog.Logger
	router chi.Router
}

// New builds the server and its router.
func New(opts Options) (*Server, error) {
	if opts.Page == nil {
		return nil, fmt.Errorf("%w: server needs a page", fcard.ErrInvalidArgument)
	}
	s := &Server{
		page:   opts.Page,
		report: opts.Report,
		ctl:    opts.Controller,
		deck:   opts.Deck,
		lang:   opts.Language,
		debug:  opts.Debug || opts.Report.Debug,
		routes: render.DefaultRoutes,
		logger: opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.ctl == nil {
		s.ctl = &practice.Controller{Logger: s.logger}
	}
	if s.deck == nil {
		c := &collect.Collector{Logger: s.logger}
		s.deck = c.Scan
	}
	s.router = s.setupRouter()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Controller returns the session controller.
func (s *Server) Controller() *practice.Controller { return s.ctl }

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	if s.debug {
		r.Use(s.renderPanics)
	} else {
		r.Use(middleware.Recoverer)
	}

	r.Get("/healthz", s.healthz)
	r.Get("/", s.showPage)

	// Without the required capabilities the page is never enhanced, so there
	// is nothing to act on.
	if !s.report.Supported() {
		return r
	}
	r.Route("/practice", func(r chi.Router) {
		r.Post("/start", s.startPractice)
		r.Post("/end", s.endPractice)
		r.Post("/backdrop", s.clickBackdrop)
		r.Post("/keys", s.keyDown)
		r.Route("/cards/{card}", func(r chi.Router) {
			r.Post("/reveal", s.cardAction(revealCard))
			r.Post("/unreveal", s.cardAction(unrevealCard))
			r.Post("/judge/{outcome}", s.cardAction(judgeCard))
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// renderPanics shows a recovered panic as an alert on the page.
func (s *Server) renderPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic serving request", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
			doc, err := s.page.Parse()
			if err == nil {
				render.Debug(doc)
				err = render.Alert(doc, fmt.Sprintf("fcard: %v", rec))
			}
			if err != nil {
				http.Error(w, fmt.Sprintf("fcard: %v", rec), http.StatusInternalServerError)
				return
			}
			s.writeDoc(w, http.StatusInternalServerError, doc)
		}()
		next.ServeHTTP(w, r)
	})
}
