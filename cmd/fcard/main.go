package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/net/html"

	"github.com/japaniel/fcard/pkg/config"
	"github.com/japaniel/fcard/pkg/db"
	"github.com/japaniel/fcard/pkg/env"
	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/ingest"
	"github.com/japaniel/fcard/pkg/logger"
	"github.com/japaniel/fcard/pkg/page"
	"github.com/japaniel/fcard/pkg/practice"
	"github.com/japaniel/fcard/pkg/reading"
	"github.com/japaniel/fcard/pkg/server"

	_ "github.com/mattn/go-sqlite3"
)

const usage = `usage: fcard <command> [flags]

commands:
  serve     serve a page with flashcard practice
  import    scan pages and archive their items
  sources   list archived pages
  version   print the version
`

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("fcard: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("no command given")
	}
	switch args[0] {
	case "serve":
		return serve(ctx, args[1:], stdout)
	case "import":
		return importPages(ctx, args[1:], stdout)
	case "sources":
		return listSources(args[1:], stdout)
	case "version":
		fmt.Fprintln(stdout, fcard.Version())
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags are accepted by every command that loads configuration.
type commonFlags struct {
	config    *string
	logLevel  *string
	logFormat *string
	dbPath    *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:    fs.String("config", "", "Path to a config file (yaml, json or toml)"),
		logLevel:  fs.String("log-level", "", "Log level: debug, info, warn or error"),
		logFormat: fs.String("log-format", "", "Log format: text or json"),
		dbPath:    fs.String("db", "", "Path to SQLite deck archive"),
	}
}

// loadConfig reads the config file and environment, then applies the flags
// that were set explicitly.
func loadConfig(fs *flag.FlagSet, common commonFlags, apply func(cfg *config.Config, name string)) (*config.Config, error) {
	cfg, err := config.Load(*common.config)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.Server.LogLevel = *common.logLevel
		case "log-format":
			cfg.Server.LogFormat = *common.logFormat
		case "db":
			cfg.Store.Path = *common.dbPath
		default:
			if apply != nil {
				apply(cfg, f.Name)
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.InitDB(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return conn, nil
}

func serve(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stdout)
	common := addCommonFlags(fs)
	addr := fs.String("addr", "", "Listen address")
	location := fs.String("page", "", "URL or file path of the page to enhance")
	lang := fs.String("lang", "", "Message language when the page declares none")
	sourceID := fs.Int64("source", 0, "Practise the archived source with this id instead of scanning the page")
	debugFlag := fs.Bool("debug", false, "Show diagnostics and render panics")
	readings := fs.Bool("readings", false, "Show kana readings for Japanese answers")
	seed := fs.Int64("seed", 0, "Seed for question order (0 picks a fresh one per session)")
	missing := fs.String("missing", "", "Comma separated capabilities the client lacks")
	emoji := fs.Bool("emoji", true, "Whether the client font renders emoji")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, common, func(cfg *config.Config, name string) {
		switch name {
		case "addr":
			cfg.Server.Addr = *addr
		case "page":
			cfg.Page.Location = *location
		case "lang":
			cfg.Page.Language = *lang
		case "source":
			cfg.Store.SourceID = *sourceID
		case "debug":
			cfg.Debug = *debugFlag
		case "readings":
			cfg.Practice.Readings = *readings
		case "seed":
			cfg.Practice.Seed = *seed
		case "missing":
			cfg.Environment.Missing = splitList(*missing)
		case "emoji":
			cfg.Environment.Emoji = *emoji
		}
	})
	if err != nil {
		return err
	}
	logr := logger.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat, os.Stderr)

	srv, closeFn, err := newServer(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closeFn()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logr.Error("shutdown failed", "error", err)
		}
	}()

	logr.Info("serving", "addr", cfg.Server.Addr, "version", fcard.Version())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logr.Info("server stopped")
	return nil
}

// newServer loads the page and wires the practice server. closeFn releases
// the deck archive, if one was opened.
func newServer(ctx context.Context, cfg *config.Config, logr *slog.Logger) (srv *server.Server, closeFn func(), err error) {
	var conn *sql.DB
	closeFn = func() {
		if conn != nil {
			conn.Close()
		}
	}
	defer func() {
		if err != nil {
			closeFn()
		}
	}()

	opts := server.Options{
		Language: cfg.Page.Language,
		Debug:    cfg.Debug,
		Logger:   logr,
	}

	location := cfg.Page.Location
	if cfg.Store.SourceID > 0 {
		if cfg.Store.Path == "" {
			return nil, nil, fmt.Errorf("%w: -source needs -db", fcard.ErrInvalidArgument)
		}
		if conn, err = openDB(cfg.Store.Path); err != nil {
			return nil, nil, err
		}
		src, err := db.GetSource(conn, cfg.Store.SourceID)
		if err != nil {
			return nil, nil, fmt.Errorf("source %d: %w", cfg.Store.SourceID, err)
		}
		if location == "" {
			location = src.Location
		}
		archive, id := conn, src.ID
		opts.Deck = func(*html.Node) (*fcard.Store, error) {
			return db.LoadStore(archive, id)
		}
	}
	if location == "" {
		return nil, nil, fmt.Errorf("%w: no page given, use -page", fcard.ErrInvalidArgument)
	}

	loader := page.NewLoader(cfg.Page.FetchTimeout)
	loader.MaxBodySize = cfg.Page.MaxBodyBytes
	loader.Logger = logr
	pg, err := loader.Load(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	opts.Page = pg
	logr.Info("page loaded", "location", pg.Location, "title", pg.Title, "lang", pg.Lang)

	opts.Report = env.Check(env.New(cfg.Environment.Missing, env.DeclaredGlyphs{EmojiFont: cfg.Environment.Emoji}, cfg.Debug))
	if !opts.Report.Supported() {
		logr.Warn("not enhancing page", "missing", len(opts.Report.Missing))
	}

	ctl := &practice.Controller{Logger: logr}
	if cfg.Practice.Seed != 0 {
		seed := cfg.Practice.Seed
		ctl.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	}
	if cfg.Practice.Readings {
		a, err := reading.NewAnnotator()
		if err != nil {
			return nil, nil, fmt.Errorf("readings: %w", err)
		}
		ctl.CardOptions = append(ctl.CardOptions, practice.WithAnnotator(a))
	}
	opts.Controller = ctl

	if srv, err = server.New(opts); err != nil {
		return nil, nil, err
	}
	return srv, closeFn, nil
}

func importPages(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stdout)
	common := addCommonFlags(fs)
	workers := fs.Int("workers", 4, "Pages fetched concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(fs, common, nil)
	if err != nil {
		return err
	}
	locations := fs.Args()
	if len(locations) == 0 {
		return fmt.Errorf("%w: give at least one page to import", fcard.ErrInvalidArgument)
	}
	logr := logger.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat, os.Stderr)

	conn, err := openDB(dbPathOrDefault(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	loader := page.NewLoader(cfg.Page.FetchTimeout)
	loader.MaxBodySize = cfg.Page.MaxBodyBytes
	loader.Logger = logr

	im := ingest.NewImporter(conn, loader)
	im.Workers = *workers
	im.Logger = logr

	start := time.Now()
	results, err := im.Import(ctx, locations)
	imported := 0
	for _, res := range results {
		if res.Err != nil || res.SourceID == 0 {
			reason := "not archived"
			if res.Err != nil {
				reason = res.Err.Error()
			}
			fmt.Fprintf(stdout, "skipped %s: %s\n", res.Location, reason)
			continue
		}
		imported++
		fmt.Fprintf(stdout, "imported %s: %d items (source %d)\n", res.Location, res.Items, res.SourceID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d of %d pages in %v\n", imported, len(locations), time.Since(start).Round(time.Millisecond))
	if imported == 0 {
		return errors.New("nothing imported")
	}
	return nil
}

func listSources(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.SetOutput(stdout)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(fs, common, nil)
	if err != nil {
		return err
	}
	conn, err := openDB(dbPathOrDefault(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	sources, err := db.ListSources(conn)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEMS\tLANG\tSCANNED\tLOCATION\tTITLE")
	for _, s := range sources {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.ItemCount, s.Lang, s.ScannedAt.Local().Format(time.DateTime), s.Location, s.Title)
	}
	return tw.Flush()
}

func dbPathOrDefault(cfg *config.Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return "fcard.db"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
