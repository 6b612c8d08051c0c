package db

import "time"

// Source is a scanned page whose items are archived.
type Source struct {
	ID        int64
	Location  string
	Title     string
	SiteName  string
	Lang      string
	ScannedAt time.Time
	ItemCount int
}
