package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/japaniel/fcard/pkg/fcard"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// CreateOrGetSource returns the id of the source at location, inserting it or
// refreshing its metadata and scan time.
func CreateOrGetSource(db DBExecutor, location, title, siteName, lang string) (int64, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return 0, fmt.Errorf("location must be non-empty")
	}
	var id int64
	err := db.QueryRow(`INSERT INTO sources (location, title, site_name, lang, scanned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			title = COALESCE(NULLIF(excluded.title, ''), sources.title),
			site_name = COALESCE(NULLIF(excluded.site_name, ''), sources.site_name),
			lang = COALESCE(NULLIF(excluded.lang, ''), sources.lang),
			scanned_at = excluded.scanned_at
		RETURNING id`,
		trimmed, title, siteName, lang, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert source: %w", err)
	}
	return id, nil
}

// ReplaceItems swaps the archived items of a source for items. Run it inside a
// transaction so readers never see a half-written deck.
func ReplaceItems(db DBExecutor, sourceID int64, items []fcard.Item) error {
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if err := deleteItems(db, sourceID); err != nil {
		return err
	}
	for pos, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
		var itemID int64
		err := db.QueryRow(`INSERT INTO items (source_id, position, anchor, html, text, tags)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
			sourceID, pos, it.Anchor, it.HTML, it.Text, strings.Join(it.Tags, " ")).Scan(&itemID)
		if err != nil {
			return fmt.Errorf("insert item %q: %w", it.Anchor, err)
		}

		fragPos := 0
		for _, lang := range it.Languages {
			for _, f := range it.Fragments[lang] {
				if _, err := db.Exec(`INSERT INTO fragments (item_id, position, lang, html, text, disambiguation)
					VALUES (?, ?, ?, ?, ?, ?)`,
					itemID, fragPos, f.Lang, f.HTML, f.Text, f.Disambiguation); err != nil {
					return fmt.Errorf("insert fragment of %q: %w", it.Anchor, err)
				}
				fragPos++
			}
		}
		for exPos, ex := range it.Examples {
			if _, err := db.Exec(`INSERT INTO examples (item_id, position, example_id, html, text)
				VALUES (?, ?, ?, ?, ?)`, itemID, exPos, ex.ID, ex.HTML, ex.Text); err != nil {
				return fmt.Errorf("insert example of %q: %w", it.Anchor, err)
			}
		}
	}
	return nil
}

func deleteItems(db DBExecutor, sourceID int64) error {
	for _, q := range []string{
		`DELETE FROM fragments WHERE item_id IN (SELECT id FROM items WHERE source_id = ?)`,
		`DELETE FROM examples WHERE item_id IN (SELECT id FROM items WHERE source_id = ?)`,
		`DELETE FROM items WHERE source_id = ?`,
	} {
		if _, err := db.Exec(q, sourceID); err != nil {
			return fmt.Errorf("clear items of source %d: %w", sourceID, err)
		}
	}
	return nil
}

// LoadItems returns the archived items of a source in their original order.
// Fragments are stored in language-grouped order, so appending them back
// restores each item's language order.
func LoadItems(db DBExecutor, sourceID int64) ([]fcard.Item, error) {
	rows, err := db.Query(`SELECT id, anchor, html, text, tags FROM items WHERE source_id = ? ORDER BY position`, sourceID)
	if err != nil {
		return nil, err
	}
	var items []fcard.Item
	index := make(map[int64]int)
	for rows.Next() {
		var id int64
		var it fcard.Item
		var text, tags sql.NullString
		if err := rows.Scan(&id, &it.Anchor, &it.HTML, &text, &tags); err != nil {
			rows.Close()
			return nil, err
		}
		it.Text = text.String
		it.Tags = strings.Fields(tags.String)
		index[id] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	frows, err := db.Query(`SELECT f.item_id, f.lang, f.html, f.text, f.disambiguation
		FROM fragments f JOIN items i ON i.id = f.item_id
		WHERE i.source_id = ? ORDER BY i.position, f.position`, sourceID)
	if err != nil {
		return nil, err
	}
	for frows.Next() {
		var itemID int64
		var f fcard.Fragment
		var text, dis sql.NullString
		if err := frows.Scan(&itemID, &f.Lang, &f.HTML, &text, &dis); err != nil {
			frows.Close()
			return nil, err
		}
		f.Text, f.Disambiguation = text.String, dis.String
		items[index[itemID]].AddFragment(f)
	}
	if err := frows.Err(); err != nil {
		frows.Close()
		return nil, err
	}
	frows.Close()

	erows, err := db.Query(`SELECT e.item_id, e.example_id, e.html, e.text
		FROM examples e JOIN items i ON i.id = e.item_id
		WHERE i.source_id = ? ORDER BY i.position, e.position`, sourceID)
	if err != nil {
		return nil, err
	}
	defer erows.Close()
	for erows.Next() {
		var itemID int64
		var ex fcard.Example
		var text sql.NullString
		if err := erows.Scan(&itemID, &ex.ID, &ex.HTML, &text); err != nil {
			return nil, err
		}
		ex.Text = text.String
		i := index[itemID]
		items[i].Examples = append(items[i].Examples, ex)
	}
	if err := erows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// LoadStore builds an item store from an archived source.
func LoadStore(db DBExecutor, sourceID int64) (*fcard.Store, error) {
	items, err := LoadItems(db, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load items of source %d: %w", sourceID, err)
	}
	return fcard.NewStore(items)
}

// GetSource returns one source with its item count.
func GetSource(db DBExecutor, id int64) (Source, error) {
	var s Source
	var title, site, lang sql.NullString
	err := db.QueryRow(`SELECT s.id, s.location, s.title, s.site_name, s.lang, s.scanned_at,
			(SELECT COUNT(*) FROM items i WHERE i.source_id = s.id)
		FROM sources s WHERE s.id = ?`, id).
		Scan(&s.ID, &s.Location, &title, &site, &lang, &s.ScannedAt, &s.ItemCount)
	if err != nil {
		return Source{}, err
	}
	s.Title, s.SiteName, s.Lang = title.String, site.String, lang.String
	return s, nil
}

// ListSources returns every archived source, most recently scanned first.
func ListSources(db DBExecutor) ([]Source, error) {
	rows, err := db.Query(`SELECT s.id, s.location, s.title, s.site_name, s.lang, s.scanned_at,
			(SELECT COUNT(*) FROM items i WHERE i.source_id = s.id)
		FROM sources s ORDER BY s.scanned_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var s Source
		var title, site, lang sql.NullString
		if err := rows.Scan(&s.ID, &s.Location, &title, &site, &lang, &s.ScannedAt, &s.ItemCount); err != nil {
			return nil, err
		}
		s.Title, s.SiteName, s.Lang = title.String, site.String, lang.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
