// Package news defines the item model shared by the ingestion adapters
// and the selection pipeline.
package news

import "time"

// Category tags where an item was filed at ingestion time.
type Category string

const (
	CategoryIndia    Category = "india"
	CategoryGlobal   Category = "global"
	CategoryLiveblog Category = "liveblog"
	CategoryOther    Category = "other"
)

// Item is a single news item produced by a source adapter.
// A zero PublishedAt means the source did not provide a timestamp.
// Items are values; nothing mutates them after ingestion.
type Item struct {
	Title        string
	Link         string
	SourceDomain string
	PublishedAt  time.Time
	Category     Category
	Summary      string
}

// HasTimestamp reports whether the source provided a publication time.
func (i Item) HasTimestamp() bool {
	return !i.PublishedAt.IsZero()
}

// Valid reports whether the item carries enough identity to process.
// An item needs a title; a link alone is not a story.
func (i Item) Valid() bool {
	return i.Title != ""
}

// IST is the market session timezone. All session-window arithmetic
// happens in this zone.
var IST = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}
