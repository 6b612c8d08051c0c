// Package ingest archives the items of many pages into the deck database.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/japaniel/fcard/pkg/collect"
	"github.com/japaniel/fcard/pkg/db"
	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/page"
)

// PageLoader loads a page by location.
type PageLoader interface {
	Load(ctx context.Context, location string) (*page.Page, error)
}

// Result reports what happened to one location.
type Result struct {
	Location string
	SourceID int64
	Title    string
	Items    int
	Err      error
}

// Importer loads pages concurrently, scans them for items and stores each
// page's items as one source.
type Importer struct {
	DB        *sql.DB
	Loader    PageLoader
	Collector *collect.Collector
	Logger    *slog.Logger

	Workers   int
	BatchSize int
	// FlushInterval bounds how long a scanned page waits before it is committed.
	FlushInterval time.Duration
}

// NewImporter creates an Importer with default concurrency settings.
func NewImporter(conn *sql.DB, loader PageLoader) *Importer {
	return &Importer{
		DB:            conn,
		Loader:        loader,
		Workers:       4,
		BatchSize:     8,
		FlushInterval: 200 * time.Millisecond,
	}
}

// Import archives every location. Failures of single locations are reported
// in their Result; the returned error covers the database writes and
// cancellation. When a batch fails to commit the whole import fails, since
// sources in that batch were rolled back.
func (im *Importer) Import(ctx context.Context, locations []string) ([]Result, error) {
	if im.DB == nil || im.Loader == nil {
		return nil, fmt.Errorf("%w: importer needs a database and a loader", fcard.ErrInvalidArgument)
	}
	log := im.logger()
	results := make([]Result, len(locations))

	bw := NewBatchWriter(im.DB, im.BatchSize, im.FlushInterval, func(err error) {
		log.Error("archive batch failed", "error", err)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(im.Workers, im.Workers*2)
	pool.Start(ctx)

	var submitErr error
	for i, loc := range locations {
		results[i].Location = loc
		res := &results[i]
		err := pool.Submit(ctx, func(ctx context.Context) error {
			return im.scan(ctx, bw, res)
		})
		if err != nil {
			submitErr = fmt.Errorf("submit %q: %w", loc, err)
			cancel()
			break
		}
	}

	if err := pool.Close(); err != nil {
		log.Warn("some locations were not imported", "error", err)
	}
	writeErr := bw.Close()
	if err := errors.Join(submitErr, writeErr); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// scan loads one page and queues its items for archiving.
func (im *Importer) scan(ctx context.Context, bw *BatchWriter, res *Result) error {
	log := im.logger().With("location", res.Location)
	start := time.Now()

	pg, err := im.Loader.Load(ctx, res.Location)
	if err != nil {
		res.Err = err
		return fmt.Errorf("load %q: %w", res.Location, err)
	}
	doc, err := pg.Parse()
	if err != nil {
		res.Err = err
		return fmt.Errorf("parse %q: %w", res.Location, err)
	}
	items, err := im.collector().Items(doc)
	if err != nil {
		res.Err = err
		return fmt.Errorf("scan %q: %w", res.Location, err)
	}
	res.Title = pg.Title
	res.Items = len(items)
	log.Info("page scanned", "items", len(items), "elapsed", time.Since(start))

	// The source id only counts once the batch holding it has committed.
	var id int64
	err = bw.SubmitNotify(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		id, err = db.CreateOrGetSource(tx, pg.Location, pg.Title, pg.SiteName, pg.Lang)
		if err != nil {
			return err
		}
		if err := db.ReplaceItems(tx, id, items); err != nil {
			return fmt.Errorf("archive %q: %w", pg.Location, err)
		}
		return nil
	}, func(err error) {
		if err != nil {
			res.Err = err
			return
		}
		res.SourceID = id
	})
	if err != nil {
		res.Err = err
	}
	return err
}

func (im *Importer) collector() *collect.Collector {
	if im.Collector != nil {
		return im.Collector
	}
	return &collect.Collector{Logger: im.Logger}
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}
