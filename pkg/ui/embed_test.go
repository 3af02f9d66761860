package ui

import (
	"strings"
	"testing"
)

// TestIndexHTMLEmbedded verifies that the index.html is embedded and contains expected content.
func TestIndexHTMLEmbedded(t *testing.T) {
	if len(IndexHTML) == 0 {
		t.Fatal("IndexHTML should not be empty")
	}

	html := string(IndexHTML)

	// Verify it's valid HTML
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Error("IndexHTML should start with DOCTYPE declaration")
	}

	// Verify the form posts to the legacy endpoint, which needs no API key
	if !strings.Contains(html, "api/download") {
		t.Error("IndexHTML should submit to the legacy download endpoint")
	}
	if !strings.Contains(html, "tweetUrl") {
		t.Error("IndexHTML should send the tweetUrl field")
	}
	if !strings.Contains(html, "videoUrl") {
		t.Error("IndexHTML should read the videoUrl field from responses")
	}

	// The recent panel is best-effort against the keyed v1 API
	if !strings.Contains(html, "api/v1/resolutions") {
		t.Error("IndexHTML should query the recent resolutions endpoint")
	}
}

// TestFaviconSVGEmbedded verifies that the favicon is embedded.
func TestFaviconSVGEmbedded(t *testing.T) {
	if len(FaviconSVG) == 0 {
		t.Fatal("FaviconSVG should not be empty")
	}

	svg := string(FaviconSVG)
	if !strings.HasPrefix(svg, "<svg") {
		t.Error("FaviconSVG should start with an svg element")
	}
}
