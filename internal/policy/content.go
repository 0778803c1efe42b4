// Package policy holds the pure per-request decisions of the server: which
// headers and content type a path gets, and whether a caller may be served.
package policy

import (
	"net/http"
	"path"
	"strings"
)

// Header values browsers check for cross-origin isolation. They must match
// exactly for SharedArrayBuffer-backed WebAssembly threads to be enabled.
const (
	HeaderCOOP = "Cross-Origin-Opener-Policy"
	HeaderCOEP = "Cross-Origin-Embedder-Policy"
	HeaderCORP = "Cross-Origin-Resource-Policy"
)

// Classification is the result of Classify.
type Classification struct {
	// ContentType is empty when no rule matched; the transport layer then
	// picks its own default.
	ContentType string
	Headers     http.Header
	// AcceptRanges is set when Accept-Ranges was advertised. The body is
	// still sent whole.
	AcceptRanges bool
}

type headerRule struct {
	name  string
	match func(p string, hasRange bool) bool
	apply func(c *Classification)
}

type contentTypeRule struct {
	suffixes    []string
	contentType string
}

// headerRules run in order; every matching rule adds its headers.
var headerRules = []headerRule{
	{
		name: "cross-origin-isolation",
		match: func(p string, _ bool) bool {
			return path.Ext(p) == ".html" || hasAnySuffix(p, ".js", ".js.gz", ".js.br")
		},
		apply: func(c *Classification) {
			c.Headers.Set(HeaderCOOP, "same-origin")
			c.Headers.Set(HeaderCOEP, "require-corp")
			c.Headers.Set(HeaderCORP, "cross-origin")
		},
	},
	{
		name:  "gzip-encoding",
		match: func(p string, _ bool) bool { return path.Ext(p) == ".gz" },
		apply: func(c *Classification) { c.Headers.Set("Content-Encoding", "gzip") },
	},
	{
		name:  "brotli-encoding",
		match: func(p string, _ bool) bool { return path.Ext(p) == ".br" },
		apply: func(c *Classification) { c.Headers.Set("Content-Encoding", "br") },
	},
	{
		name:  "accept-ranges",
		match: func(_ string, hasRange bool) bool { return hasRange },
		apply: func(c *Classification) {
			c.Headers.Set("Accept-Ranges", "bytes")
			c.AcceptRanges = true
		},
	},
}

// contentTypeRules are checked in order; the first match wins.
var contentTypeRules = []contentTypeRule{
	{[]string{".wasm", ".wasm.gz", ".wasm.br"}, "application/wasm"},
	{[]string{".js", ".js.gz", ".js.br"}, "application/javascript"},
	{[]string{".data.gz"}, "application/gzip"},
	{[]string{".data", ".data.br"}, "application/octet-stream"},
	{[]string{".json"}, "application/json"},
}

// noCacheHeaders go on every response.
var noCacheHeaders = [][2]string{
	{"Cache-Control", "no-cache, no-store, must-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
}

// Classify derives the content type and extra response headers for the
// request path p. It never touches the file system.
func Classify(p string, requestHasRangeHeader bool) Classification {
	c := Classification{Headers: make(http.Header)}
	for _, h := range noCacheHeaders {
		c.Headers.Set(h[0], h[1])
	}

	for _, r := range headerRules {
		if r.match(p, requestHasRangeHeader) {
			r.apply(&c)
		}
	}

	for _, r := range contentTypeRules {
		if hasAnySuffix(p, r.suffixes...) {
			c.ContentType = r.contentType
			break
		}
	}
	return c
}

// Apply copies the classification onto h. The content type is only set when
// a rule produced one.
func (c Classification) Apply(h http.Header) {
	for name, values := range c.Headers {
		h[name] = append([]string(nil), values...)
	}
	if c.ContentType != "" {
		h.Set("Content-Type", c.ContentType)
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
