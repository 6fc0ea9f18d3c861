package domain

import "time"

// SourceKind tells the extractor how to interpret fetched content
type SourceKind string

const (
	// KindHTML is a regular listing page scraped with CSS selectors
	KindHTML SourceKind = "html"
	// KindRSS is an RSS/Atom feed parsed as a feed document
	KindRSS SourceKind = "rss"
)

// Rules holds the CSS selectors used to pick posts out of an HTML listing page.
// Container selects repeating post blocks; the rest select fields within a block.
type Rules struct {
	Container string
	Title     string
	Link      string
	Date      string
	Summary   string
}

// Source represents one configured site to scrape, immutable after config load
type Source struct {
	Name  string
	URL   string
	Kind  SourceKind
	Rules Rules
}

// Post represents a single extracted blog entry
type Post struct {
	Source    string
	Title     string
	URL       string
	Published *time.Time // nil when the page carried no parsable date
	Summary   string
}

// Key returns the identity of the post used for deduplication
func (p Post) Key() PostKey {
	return PostKey{Source: p.Source, URL: p.URL}
}

// PostKey uniquely identifies a post within the ledger
type PostKey struct {
	Source string
	URL    string
}

// Section groups the new posts of one source for reporting,
// sections follow configuration order
type Section struct {
	Source string
	Posts  []Post
}

// DegradedSource records a source whose fetch or extraction failed during a run
type DegradedSource struct {
	Source string
	Reason string
}

// Report is the immutable result of one completed run
type Report struct {
	Text        string
	Filename    string
	Sections    []Section
	Degraded    []DegradedSource
	GeneratedAt time.Time
}

// NewPostCount returns the total number of new posts across all sections
func (r *Report) NewPostCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Posts)
	}
	return n
}
