// Package parser turns raw feed bytes into normalized entries. It
// tolerates RSS 2.0 and Atom through gofeed's dialect-agnostic model
// and owns the single sanitization pass over each entry body, so
// callers never see unsafe HTML.
package parser

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"feedstash/app/hash"
	"feedstash/app/sanitize"
)

// ErrMalformedXML is returned when the input is not well-formed XML or
// has no recognizable channel/feed root.
var ErrMalformedXML = errors.New("invalid RSS/Atom feed format")

const (
	defaultFeedTitle  = "Untitled Feed"
	defaultEntryTitle = "Untitled"
)

type Parser struct {
	gofeedParser *gofeed.Parser
	sanitizer    *sanitize.Sanitizer
}

func NewParser(sanitizer *sanitize.Sanitizer) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    sanitizer,
	}
}

func (p *Parser) Run(data []byte, opts Options) (*Meta, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	meta := &Meta{
		Title:       cmp.Or(feed.Title, defaultFeedTitle),
		Description: feed.Description,
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, p.normalizeItem(item, opts))
	}

	return meta, entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, opts Options) Entry {
	entry := Entry{
		Title:       cmp.Or(item.Title, defaultEntryTitle),
		Link:        item.Link,
		PublishedAt: p.resolveDate(item),
		Author:      p.extractAuthor(item),
	}

	// gofeed maps content:encoded and Atom content to Content, and
	// description/summary to Description.
	body := cmp.Or(item.Content, item.Description)
	entry.ContentHash = hash.FingerprintString(body)

	if opts.Extract != nil {
		if richer, ok := opts.Extract(entry.Link, body); ok {
			body = richer
		}
	}

	entry.Content = p.sanitizer.Run(body, opts.AllowImages)

	return entry
}

// resolveDate takes the first usable date among publish/updated
// variants and falls back to the current time when none parse.
func (p *Parser) resolveDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(raw); err == nil {
			return ts
		}
	}

	return time.Now()
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		if author := formatAuthor(item.Authors[0]); author != "" {
			return author
		}
	}
	if item.Author != nil {
		return formatAuthor(item.Author)
	}
	return ""
}

func formatAuthor(person *gofeed.Person) string {
	if person.Name != "" {
		return person.Name
	}
	return person.Email
}
