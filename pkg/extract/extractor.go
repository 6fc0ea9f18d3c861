package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

// maxSummaryLen caps the rendered summary length in runes
const maxSummaryLen = 200

// Extractor turns raw fetched content into posts using per-source rules.
// HTML sources are scraped with CSS selectors, rss sources are parsed as feeds.
type Extractor struct {
	sanitizer  *bluemonday.Policy
	feedParser *gofeed.Parser
}

// New creates an extractor
func New() *Extractor {
	return &Extractor{
		sanitizer:  bluemonday.StrictPolicy(),
		feedParser: gofeed.NewParser(),
	}
}

// Extract parses raw content into posts in document order. A total parse
// failure returns *domain.ExtractError; individual broken candidates are
// skipped and logged, never fatal for the source.
func (e *Extractor) Extract(src domain.Source, raw []byte) ([]domain.Post, error) {
	if src.Kind == domain.KindRSS {
		return e.extractFeed(src, raw)
	}
	return e.extractHTML(src, raw)
}

// extractHTML scrapes a listing page with the source's selector rules
func (e *Extractor) extractHTML(src domain.Source, raw []byte) ([]domain.Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &domain.ExtractError{Source: src.Name, Reason: domain.ReasonBadHTML, Err: err}
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, &domain.ExtractError{Source: src.Name, Reason: domain.ReasonBadHTML, Err: err}
	}

	containers := doc.Find(src.Rules.Container)
	if containers.Length() == 0 {
		return nil, &domain.ExtractError{Source: src.Name, Reason: domain.ReasonNoContainers}
	}

	posts := make([]domain.Post, 0, containers.Length())
	containers.Each(func(i int, sel *goquery.Selection) {
		post, ok := e.extractPost(src, base, sel)
		if !ok {
			lgr.Printf("[DEBUG] skipped candidate %d on %s", i, src.Name)
			return
		}
		posts = append(posts, post)
	})

	return posts, nil
}

// extractPost pulls one post out of a container block. Returns ok=false
// when the candidate has no usable title or link.
func (e *Extractor) extractPost(src domain.Source, base *url.URL, sel *goquery.Selection) (domain.Post, bool) {
	title := normalizeSpace(sel.Find(src.Rules.Title).First().Text())
	if title == "" {
		lgr.Printf("[WARN] candidate without title on %s, skipped", src.Name)
		return domain.Post{}, false
	}

	href := findHref(sel, src.Rules.Title, src.Rules.Link)
	if href == "" {
		lgr.Printf("[WARN] candidate %q on %s has no link, skipped", title, src.Name)
		return domain.Post{}, false
	}
	link := resolveURL(base, href)
	if link == "" {
		lgr.Printf("[WARN] candidate %q on %s has unparsable link %q, skipped", title, src.Name, href)
		return domain.Post{}, false
	}

	post := domain.Post{
		Source:  src.Name,
		Title:   title,
		URL:     link,
		Summary: e.summary(sel, src.Rules.Summary),
	}

	// an unparsable date keeps the post, an undated post is still useful
	if dateSel := sel.Find(src.Rules.Date).First(); dateSel.Length() > 0 {
		text := dateSel.AttrOr("datetime", "")
		if text == "" {
			text = dateSel.Text()
		}
		post.Published = ParseDate(text)
	}

	return post, true
}

// findHref locates the post link, preferring a link inside the title
// element over any other link in the block
func findHref(sel *goquery.Selection, titleSelector, linkSelector string) string {
	titleSel := sel.Find(titleSelector).First()
	if href, ok := titleSel.Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := titleSel.Find("a").First().Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := sel.Find(linkSelector).First().Attr("href"); ok && href != "" {
		return href
	}
	return ""
}

// summary extracts and sanitizes the post summary, empty when absent
func (e *Extractor) summary(sel *goquery.Selection, selector string) string {
	node := sel.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	raw, err := node.Html()
	if err != nil || raw == "" {
		raw = node.Text()
	}
	return truncate(normalizeSpace(e.sanitizer.Sanitize(raw)), maxSummaryLen)
}

// extractFeed maps an RSS/Atom feed document to posts in document order
func (e *Extractor) extractFeed(src domain.Source, raw []byte) ([]domain.Post, error) {
	feed, err := e.feedParser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &domain.ExtractError{Source: src.Name, Reason: domain.ReasonBadFeed, Err: err}
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, &domain.ExtractError{Source: src.Name, Reason: domain.ReasonBadFeed, Err: err}
	}

	posts := make([]domain.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := normalizeSpace(item.Title)
		if title == "" {
			lgr.Printf("[WARN] feed item without title on %s, skipped", src.Name)
			continue
		}
		link := resolveURL(base, item.Link)
		if link == "" {
			lgr.Printf("[WARN] feed item %q on %s has no link, skipped", title, src.Name)
			continue
		}

		post := domain.Post{
			Source:  src.Name,
			Title:   title,
			URL:     link,
			Summary: truncate(normalizeSpace(e.sanitizer.Sanitize(item.Description)), maxSummaryLen),
		}
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			post.Published = &t
		} else if item.UpdatedParsed != nil {
			t := *item.UpdatedParsed
			post.Published = &t
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// resolveURL resolves a possibly relative href against the source base URL,
// the resolved URL is the dedup key
func resolveURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return ""
	}
	return resolved.String()
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeSpace collapses runs of whitespace and trims the result
func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// truncate limits s to max runes, appending an ellipsis when cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
