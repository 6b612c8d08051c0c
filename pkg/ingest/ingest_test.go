package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/japaniel/fcard/pkg/db"
	"github.com/japaniel/fcard/pkg/fcard"
	"github.com/japaniel/fcard/pkg/page"
	_ "github.com/mattn/go-sqlite3"
)

func setupDB(t *testing.T) *sql.DB {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	return conn
}

// memLoader serves pages from memory.
type memLoader map[string]string

func (m memLoader) Load(ctx context.Context, location string) (*page.Page, error) {
	body, ok := m[location]
	if !ok {
		return nil, fmt.Errorf("no page at %s", location)
	}
	return page.NewLoader(0).FromBytes(location, nil, []byte(body))
}

const wordsPage = `<html lang="pl"><head><title>Words</title></head><body>
<ul>
<li id="dog" data-fcard-item data-fcard-tags="animal"><span lang="en">dog</span> <span lang="pl">pies</span></li>
<li data-fcard-item><span lang="en">cat</span> <span lang="pl">kot</span></li>
</ul></body></html>`

const emptyPage = `<html><body><p>nothing to learn here</p></body></html>`

func TestImportArchivesPages(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	loader := memLoader{
		"https://example.com/words": wordsPage,
		"https://example.com/empty": emptyPage,
	}
	im := NewImporter(conn, loader)
	im.BatchSize = 1

	results, err := im.Import(context.Background(), []string{
		"https://example.com/words",
		"https://example.com/empty",
		"https://example.com/missing",
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	words := results[0]
	if words.Err != nil || words.Items != 2 || words.SourceID == 0 {
		t.Fatalf("unexpected result for words page: %+v", words)
	}
	if words.Title != "Words" {
		t.Fatalf("expected title Words, got %q", words.Title)
	}
	if !errors.Is(results[1].Err, fcard.ErrNoItemsFound) {
		t.Fatalf("expected ErrNoItemsFound for empty page, got %v", results[1].Err)
	}
	if results[2].Err == nil || results[2].SourceID != 0 {
		t.Fatalf("expected load error for missing page, got %+v", results[2])
	}

	store, err := db.LoadStore(conn, words.SourceID)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 archived items, got %d", store.Len())
	}
	if got := store.Item(0); got.Anchor != "dog" || got.Tags[0] != "animal" {
		t.Fatalf("unexpected first item %+v", got)
	}

	sources, err := db.ListSources(conn)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Lang != "pl" {
		t.Fatalf("expected only the words page archived, got %+v", sources)
	}
}

func TestImportIsRepeatable(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	loader := memLoader{"https://example.com/words": wordsPage}
	im := NewImporter(conn, loader)

	first, err := im.Import(context.Background(), []string{"https://example.com/words"})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := im.Import(context.Background(), []string{"https://example.com/words"})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if first[0].SourceID != second[0].SourceID {
		t.Fatalf("expected the same source, got %d and %d", first[0].SourceID, second[0].SourceID)
	}
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected re-import to replace items, found %d", n)
	}
}

func TestImportFailedBatchClearsResults(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	if _, err := conn.Exec(`CREATE TRIGGER reject_broken BEFORE INSERT ON sources
WHEN NEW.location = 'https://example.com/broken'
BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	loader := memLoader{
		"https://example.com/words":  wordsPage,
		"https://example.com/broken": wordsPage,
	}
	im := NewImporter(conn, loader)
	im.Workers = 1
	im.BatchSize = 2
	im.FlushInterval = 0

	results, err := im.Import(context.Background(), []string{
		"https://example.com/words",
		"https://example.com/broken",
	})
	if err == nil {
		t.Fatal("expected the failed batch to fail the import")
	}
	for _, res := range results {
		if res.SourceID != 0 {
			t.Fatalf("expected no source id for a rolled back page, got %+v", res)
		}
		if res.Err == nil {
			t.Fatalf("expected the batch error on %s", res.Location)
		}
	}
	sources, err := db.ListSources(conn)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected nothing archived, got %+v", sources)
	}
}

func TestImportRequiresDependencies(t *testing.T) {
	_, err := (&Importer{}).Import(context.Background(), nil)
	if !errors.Is(err, fcard.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestImportCanceled(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	im := NewImporter(conn, memLoader{"https://example.com/words": wordsPage})
	if _, err := im.Import(ctx, []string{"https://example.com/words"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
