package sanitize

import (
	"strings"
	"testing"
)

func TestRunStripsScripts(t *testing.T) {
	s := NewSanitizer()

	output := s.Run(`<p>hi<script>alert(1)</script></p>`, false)

	if output != "<p>hi</p>" {
		t.Errorf("Expected '<p>hi</p>', got: %s", output)
	}
	if strings.Contains(output, "alert") {
		t.Errorf("Script content survived sanitization: %s", output)
	}
}

func TestRunStripsEventHandlers(t *testing.T) {
	s := NewSanitizer()

	output := s.Run(`<p onclick="steal()">hello</p>`, false)

	if strings.Contains(output, "onclick") || strings.Contains(output, "steal") {
		t.Errorf("Event handler survived sanitization: %s", output)
	}
	if !strings.Contains(output, "hello") {
		t.Errorf("Text content lost: %s", output)
	}
}

func TestRunStripsJavascriptURIs(t *testing.T) {
	s := NewSanitizer()

	output := s.Run(`<a href="javascript:alert(1)">click</a>`, false)

	if strings.Contains(output, "javascript:") {
		t.Errorf("javascript: URI survived sanitization: %s", output)
	}
	if !strings.Contains(output, "click") {
		t.Errorf("Link text lost: %s", output)
	}
}

func TestRunKeepsAllowedMarkup(t *testing.T) {
	s := NewSanitizer()

	input := `<h2>Title</h2><p>Some <strong>bold</strong> and <em>italic</em> text.</p><ul><li>one</li><li>two</li></ul><blockquote>quote</blockquote><pre><code>x := 1</code></pre>`
	output := s.Run(input, false)

	if output != input {
		t.Errorf("Allowed markup was altered.\nInput:  %s\nOutput: %s", input, output)
	}
}

func TestRunKeepsSecureLinks(t *testing.T) {
	s := NewSanitizer()

	input := `<p><a href="https://example.com/post">read more</a></p>`
	output := s.Run(input, false)

	if output != input {
		t.Errorf("Secure link was altered.\nInput:  %s\nOutput: %s", input, output)
	}
}

func TestRunGatesImages(t *testing.T) {
	s := NewSanitizer()
	input := `<p>text</p><img src="https://example.com/pic.png" alt="pic">`

	withoutImages := s.Run(input, false)
	if strings.Contains(withoutImages, "<img") {
		t.Errorf("Image survived with allowImages=false: %s", withoutImages)
	}

	withImages := s.Run(input, true)
	if !strings.Contains(withImages, "<img") {
		t.Errorf("Image removed with allowImages=true: %s", withImages)
	}
	if !strings.Contains(withImages, `src="https://example.com/pic.png"`) {
		t.Errorf("Image src lost: %s", withImages)
	}
}

func TestRunGatesIframes(t *testing.T) {
	s := NewSanitizer()
	input := `<iframe src="https://example.com/embed" width="560" height="315"></iframe>`

	if out := s.Run(input, false); strings.Contains(out, "<iframe") {
		t.Errorf("Iframe survived with allowImages=false: %s", out)
	}
	if out := s.Run(input, true); !strings.Contains(out, "<iframe") {
		t.Errorf("Iframe removed with allowImages=true: %s", out)
	}
}

func TestRunIdempotent(t *testing.T) {
	s := NewSanitizer()

	inputs := []string{
		`<p>plain text</p>`,
		`<p>hi<script>alert(1)</script></p>`,
		`<p>a &amp; b</p>`,
		`<h1>Heading</h1><p><a href="https://example.com">link</a></p>`,
		`<img src="https://example.com/a.png" alt="a">`,
		`<div><span class="note">nested</span></div>`,
	}

	for _, allowImages := range []bool{false, true} {
		for _, input := range inputs {
			once := s.Run(input, allowImages)
			twice := s.Run(once, allowImages)
			if once != twice {
				t.Errorf("Sanitization not idempotent (allowImages=%v).\nOnce:  %s\nTwice: %s",
					allowImages, once, twice)
			}
		}
	}
}
