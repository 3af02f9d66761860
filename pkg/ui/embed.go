// Package ui provides the embedded web UI assets for xresolve.
package ui

import (
	_ "embed"
)

// IndexHTML is the single-page resolve form.
// It talks to the unauthenticated legacy endpoint, so it works without
// an API key; the recent-resolutions panel quietly hides itself when
// the v1 API rejects it.
//
//go:embed index.html
var IndexHTML []byte

// FaviconSVG is the browser tab icon.
//
//go:embed favicon.svg
var FaviconSVG []byte
