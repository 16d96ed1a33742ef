package opml

import (
	"strings"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline type="rss" text="Alpha" xmlUrl="https://alpha.example.com/feed.xml"/>
    <outline text="Tech">
      <outline type="rss" text="Beta" xmlUrl="https://beta.example.com/rss"/>
      <outline text="Deep">
        <outline type="rss" text="Gamma" xmlUrl="https://gamma.example.com/atom.xml"/>
      </outline>
    </outline>
    <outline type="rss" text="Insecure" xmlUrl="http://plain.example.com/feed"/>
    <outline type="rss" text="Dup" xmlUrl="https://alpha.example.com/feed.xml"/>
  </body>
</opml>`

	urls, err := ExtractURLs(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ExtractURLs failed: %v", err)
	}

	want := []string{
		"https://alpha.example.com/feed.xml",
		"https://beta.example.com/rss",
		"https://gamma.example.com/atom.xml",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d URLs, got %d: %v", len(want), len(urls), urls)
	}
	for i, url := range want {
		if urls[i] != url {
			t.Errorf("url %d: expected %q, got %q", i, url, urls[i])
		}
	}
}

func TestExtractURLsEmptyBody(t *testing.T) {
	urls, err := ExtractURLs(strings.NewReader(`<opml version="2.0"><body/></opml>`))
	if err != nil {
		t.Fatalf("ExtractURLs failed: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected no URLs, got %v", urls)
	}
}

func TestExtractURLsInvalidDocument(t *testing.T) {
	if _, err := ExtractURLs(strings.NewReader("not xml at all")); err == nil {
		t.Error("expected error for invalid document")
	}
}
