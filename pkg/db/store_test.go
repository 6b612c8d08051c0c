package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/japaniel/fcard/pkg/fcard"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleItems() []fcard.Item {
	var dog fcard.Item
	dog.Anchor = "dog"
	dog.HTML = `<li id="dog"><span lang="en">dog</span> <span lang="pl">pies</span></li>`
	dog.Text = "dog pies"
	dog.Tags = []string{"animal", "pet"}
	dog.AddFragment(fcard.Fragment{Lang: "pl", HTML: `<span lang="pl">pies</span>`, Text: "pies", Disambiguation: "zwierzę"})
	dog.AddFragment(fcard.Fragment{Lang: "en", HTML: `<span lang="en">dog</span>`, Text: "dog"})
	dog.AddFragment(fcard.Fragment{Lang: "pl", HTML: `<span lang="pl">piesek</span>`, Text: "piesek"})
	dog.Examples = []fcard.Example{{ID: "ex-dog", HTML: `<p id="ex-dog">The dog barks.</p>`, Text: "The dog barks."}}

	var cat fcard.Item
	cat.Anchor = "item-1"
	cat.HTML = `<li><span lang="en">cat</span> <span lang="ja">猫</span></li>`
	cat.Text = "cat 猫"
	cat.AddFragment(fcard.Fragment{Lang: "en", HTML: `<span lang="en">cat</span>`, Text: "cat"})
	cat.AddFragment(fcard.Fragment{Lang: "ja", HTML: `<span lang="ja">猫</span>`, Text: "猫"})
	return []fcard.Item{dog, cat}
}

func TestInitDBIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
	for _, table := range []string{"sources", "items", "fragments", "examples"} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestCreateOrGetSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id1, err := CreateOrGetSource(db, "https://example.com/words", "Words", "example.com", "pl")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	id2, err := CreateOrGetSource(db, " https://example.com/words ", "", "", "")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same source id, got %d and %d", id1, id2)
	}
	src, err := GetSource(db, id1)
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	if src.Title != "Words" || src.Lang != "pl" || src.SiteName != "example.com" {
		t.Fatalf("empty metadata must not overwrite existing values, got %+v", src)
	}
	if _, err := CreateOrGetSource(db, "  ", "", "", ""); err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestReplaceAndLoadItemsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := CreateOrGetSource(db, "file:///tmp/words.html", "", "", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	want := sampleItems()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ReplaceItems(tx, id, want); err != nil {
		tx.Rollback()
		t.Fatalf("ReplaceItems: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := LoadItems(db, id)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	dog := got[0]
	if dog.Anchor != "dog" || dog.Text != "dog pies" {
		t.Fatalf("unexpected first item %+v", dog)
	}
	if len(dog.Languages) != 2 || dog.Languages[0] != "pl" || dog.Languages[1] != "en" {
		t.Fatalf("language order not preserved: %v", dog.Languages)
	}
	if len(dog.Fragments["pl"]) != 2 || dog.Fragments["pl"][1].Text != "piesek" {
		t.Fatalf("pl fragments not preserved: %+v", dog.Fragments["pl"])
	}
	if dog.Fragments["pl"][0].Disambiguation != "zwierzę" {
		t.Fatalf("disambiguation lost: %+v", dog.Fragments["pl"][0])
	}
	if len(dog.Tags) != 2 || dog.Tags[1] != "pet" {
		t.Fatalf("tags lost: %v", dog.Tags)
	}
	if len(dog.Examples) != 1 || dog.Examples[0].ID != "ex-dog" {
		t.Fatalf("examples lost: %+v", dog.Examples)
	}
	if got[1].Fragments["ja"][0].Text != "猫" || len(got[1].Tags) != 0 {
		t.Fatalf("unexpected second item %+v", got[1])
	}

	src, err := GetSource(db, id)
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	if src.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", src.ItemCount)
	}
}

func TestReplaceItemsDropsPreviousDeck(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := CreateOrGetSource(db, "https://example.com/a", "", "", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	items := sampleItems()
	if err := ReplaceItems(db, id, items); err != nil {
		t.Fatalf("first ReplaceItems: %v", err)
	}
	if err := ReplaceItems(db, id, items[1:]); err != nil {
		t.Fatalf("second ReplaceItems: %v", err)
	}
	got, err := LoadItems(db, id)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(got) != 1 || got[0].Anchor != "item-1" {
		t.Fatalf("expected only the cat item, got %+v", got)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM fragments").Scan(&n); err != nil {
		t.Fatalf("count fragments: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected stale fragments removed, %d left", n)
	}
}

func TestReplaceItemsRejectsInvalidItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := CreateOrGetSource(db, "https://example.com/b", "", "", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	err = ReplaceItems(db, id, []fcard.Item{{Anchor: "empty", HTML: "<li></li>"}})
	if !errors.Is(err, fcard.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
}

func TestLoadStoreEmptySource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := CreateOrGetSource(db, "https://example.com/empty", "", "", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if _, err := LoadStore(db, id); !errors.Is(err, fcard.ErrNoItemsFound) {
		t.Fatalf("expected ErrNoItemsFound, got %v", err)
	}
}

func TestListSources(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	a, _ := CreateOrGetSource(db, "https://example.com/a", "A", "", "")
	b, _ := CreateOrGetSource(db, "https://example.com/b", "B", "", "")
	if err := ReplaceItems(db, b, sampleItems()); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	list, err := ListSources(db)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(list))
	}
	counts := map[int64]int{}
	for _, s := range list {
		counts[s.ID] = s.ItemCount
	}
	if counts[a] != 0 || counts[b] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}
