// Package opml reads OPML subscription lists exported by other feed
// readers.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Body    body     `xml:"body"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Type     string    `xml:"type,attr"`
	Text     string    `xml:"text,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// ExtractURLs parses an OPML document and returns the https feed URLs
// it references. Folder outlines are walked recursively; entries with
// other schemes are ignored.
func ExtractURLs(r io.Reader) ([]string, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML document: %w", err)
	}

	var urls []string
	seen := map[string]bool{}
	var walk func(outlines []outline)
	walk = func(outlines []outline) {
		for _, o := range outlines {
			if strings.HasPrefix(o.XMLURL, "https://") && !seen[o.XMLURL] {
				seen[o.XMLURL] = true
				urls = append(urls, o.XMLURL)
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)

	return urls, nil
}
