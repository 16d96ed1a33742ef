// Package sanitize rewrites untrusted entry HTML into markup safe for
// embedding. Everything outside an explicit allowlist is stripped, and
// script execution vectors (script tags, inline event handlers,
// javascript: URIs) are removed unconditionally. Network-fetching
// elements (images, video, iframes) are only allowed when the owning
// feed opts in.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	base   *bluemonday.Policy
	images *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		base:   buildPolicy(false),
		images: buildPolicy(true),
	}
}

// Run sanitizes rawHTML against the allowlist. The output is stable:
// sanitizing already-sanitized markup is a no-op, so callers must not
// re-sanitize downstream.
func (s *Sanitizer) Run(rawHTML string, allowImages bool) string {
	if allowImages {
		return s.images.Sanitize(rawHTML)
	}
	return s.base.Sanitize(rawHTML)
}

func buildPolicy(allowImages bool) *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Structural and text-formatting tags.
	p.AllowElements("p", "br", "strong", "em", "u", "ul", "ol", "li",
		"blockquote", "code", "pre",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"div", "span", "figcaption")

	// Links. Unparseable and non-allowlisted schemes drop the href,
	// which covers javascript: URIs.
	p.AllowAttrs("href", "target", "rel", "title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)

	p.AllowAttrs("class").Globally()

	if allowImages {
		p.AllowElements("figure")
		p.AllowAttrs("src", "alt", "title", "width", "height", "loading").OnElements("img")
		p.AllowAttrs("src", "title", "width", "height").OnElements("video", "iframe")
	}

	return p
}
