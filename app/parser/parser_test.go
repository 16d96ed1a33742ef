package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"feedstash/app/hash"
	"feedstash/app/sanitize"
)

func newTestParser() *Parser {
	return NewParser(sanitize.NewSanitizer())
}

func TestRunRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>First Post</title>
      <link>https://example.com/post/1</link>
      <description>&lt;p&gt;First body&lt;/p&gt;</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/post/2</link>
      <description>&lt;p&gt;Second body&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

	parser := newTestParser()
	meta, entries, err := parser.Run([]byte(rssData), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if meta.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", meta.Title)
	}
	if meta.Description != "Test Description" {
		t.Errorf("Expected description 'Test Description', got: %s", meta.Description)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	first := entries[0]
	if first.Title != "First Post" {
		t.Errorf("Expected title 'First Post', got: %s", first.Title)
	}
	if first.Link != "https://example.com/post/1" {
		t.Errorf("Expected link 'https://example.com/post/1', got: %s", first.Link)
	}
	want := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Errorf("Expected published at %v, got: %v", want, first.PublishedAt)
	}
	if first.Content != "<p>First body</p>" {
		t.Errorf("Expected sanitized body, got: %s", first.Content)
	}
	if first.Author == "" {
		t.Error("Expected author to be extracted")
	}
	if first.ContentHash == "" {
		t.Error("Expected content hash to be computed")
	}
	if first.ContentHash == entries[1].ContentHash {
		t.Error("Distinct bodies must produce distinct content hashes")
	}

	// The second item has no date at all; it defaults to parse time.
	if time.Since(entries[1].PublishedAt) > 5*time.Second {
		t.Errorf("Expected missing date to default to now, got: %v", entries[1].PublishedAt)
	}
}

func TestRunAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <subtitle>Atom Description</subtitle>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.com/entry/1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T11:00:00Z</updated>
    <summary>&lt;p&gt;Atom body&lt;/p&gt;</summary>
    <author><name>Atom Author</name></author>
  </entry>
</feed>`

	parser := newTestParser()
	meta, entries, err := parser.Run([]byte(atomData), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if meta.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", meta.Title)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Link != "https://example.com/entry/1" {
		t.Errorf("Expected href-style link, got: %s", entry.Link)
	}
	if entry.Author != "Atom Author" {
		t.Errorf("Expected author 'Atom Author', got: %s", entry.Author)
	}
	if !strings.Contains(entry.Content, "Atom body") {
		t.Errorf("Expected body content, got: %s", entry.Content)
	}
}

func TestRunDefaults(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <item>
      <description>body only</description>
    </item>
  </channel>
</rss>`

	parser := newTestParser()
	meta, entries, err := parser.Run([]byte(rssData), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if meta.Title != "Untitled Feed" {
		t.Errorf("Expected default feed title, got: %s", meta.Title)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}
	if entries[0].Title != "Untitled" {
		t.Errorf("Expected default entry title, got: %s", entries[0].Title)
	}
	if entries[0].Link != "" {
		t.Errorf("Expected empty link default, got: %s", entries[0].Link)
	}
	if entries[0].Author != "" {
		t.Errorf("Expected absent author, got: %s", entries[0].Author)
	}
}

func TestRunMalformedXML(t *testing.T) {
	parser := newTestParser()

	inputs := []string{
		`not xml at all`,
		`<html><body>a web page, not a feed</body></html>`,
		`<?xml version="1.0"?><root><thing/></root>`,
	}

	for _, input := range inputs {
		_, _, err := parser.Run([]byte(input), Options{})
		if err == nil {
			t.Errorf("Expected error for input %q", input)
			continue
		}
		if !errors.Is(err, ErrMalformedXML) {
			t.Errorf("Expected ErrMalformedXML for input %q, got: %v", input, err)
		}
	}
}

func TestRunSanitizesBodies(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <title>Post</title>
      <link>https://example.com/post</link>
      <description>&lt;p&gt;hi&lt;script&gt;alert(1)&lt;/script&gt;&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

	parser := newTestParser()
	_, entries, err := parser.Run([]byte(rssData), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	if strings.Contains(entries[0].Content, "script") || strings.Contains(entries[0].Content, "alert") {
		t.Errorf("Script content survived parsing: %s", entries[0].Content)
	}
	if !strings.Contains(entries[0].Content, "hi") {
		t.Errorf("Body text lost: %s", entries[0].Content)
	}

	// The content hash covers the raw body, scripts included.
	wantHash := hash.FingerprintString("<p>hi<script>alert(1)</script></p>")
	if entries[0].ContentHash != wantHash {
		t.Errorf("Content hash must fingerprint the raw body, got: %s", entries[0].ContentHash)
	}
}

func TestRunImageGating(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <title>Post</title>
      <link>https://example.com/post</link>
      <description>&lt;p&gt;text&lt;/p&gt;&lt;img src="https://example.com/pic.png"&gt;</description>
    </item>
  </channel>
</rss>`

	parser := newTestParser()

	_, entries, err := parser.Run([]byte(rssData), Options{AllowImages: false})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Contains(entries[0].Content, "<img") {
		t.Errorf("Image survived with AllowImages=false: %s", entries[0].Content)
	}

	_, entries, err = parser.Run([]byte(rssData), Options{AllowImages: true})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(entries[0].Content, "<img") {
		t.Errorf("Image removed with AllowImages=true: %s", entries[0].Content)
	}
}

func TestRunExtractHook(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <title>Post</title>
      <link>https://example.com/post</link>
      <description>&lt;p&gt;stub&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`

	var gotLink string
	opts := Options{
		Extract: func(link, body string) (string, bool) {
			gotLink = link
			return "<p>full article</p><script>bad()</script>", true
		},
	}

	parser := newTestParser()
	_, entries, err := parser.Run([]byte(rssData), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotLink != "https://example.com/post" {
		t.Errorf("Extract hook received wrong link: %s", gotLink)
	}
	if !strings.Contains(entries[0].Content, "full article") {
		t.Errorf("Expected enriched body, got: %s", entries[0].Content)
	}
	if strings.Contains(entries[0].Content, "script") {
		t.Errorf("Enriched body must still be sanitized: %s", entries[0].Content)
	}

	// Enrichment must not move the duplicate-detection fingerprint.
	if entries[0].ContentHash != hash.FingerprintString("<p>stub</p>") {
		t.Error("Content hash must fingerprint the original syndicated body")
	}
}
