// Package index builds and parses the index.html documents that make up
// a PEP 503 simple package index: one root page linking every package
// directory, and one page per package linking its files.
package index

import (
	"strings"

	"golang.org/x/net/html"
)

// Filename is the name every index document is stored under, both
// locally and in the bucket.
const Filename = "index.html"

const (
	rootHeader = "<!DOCTYPE html>\n" +
		"<html>\n" +
		"  <head>\n" +
		"    <title>Simple Index</title>\n" +
		"    <meta name=\"api-version\" value=\"2\" />\n" +
		"  </head>\n" +
		"  <body>\n"
	rootFooter = "  </body>\n</html>\n"
)

// RenderRoot produces the complete root index document for the given
// package directory names, in the order given. Rendering is a full
// regeneration: the result replaces any previous document.
func RenderRoot(names []string) string {
	var b strings.Builder
	b.WriteString(rootHeader)
	for _, name := range names {
		b.WriteString("    <a href=\"" + name + "/\">" + name + "</a>\n")
		b.WriteString("    <br />\n")
	}
	b.WriteString(rootFooter)
	return b.String()
}

// AppendPackageLink appends one file link to a package page and returns
// the new document text. Package pages are bare link lists with no
// header or footer. No deduplication happens here: appending the same
// filename twice yields two entries.
func AppendPackageLink(existing, filename string) string {
	return existing + "<a href=\"" + filename + "\">" + filename + "</a>\n<br />\n"
}

// ListLinkedNames returns the href values of all anchor elements in the
// document, in document order. Parsing is permissive: anchors without an
// href, and any malformed markup the tokenizer can step over, are
// skipped rather than treated as errors.
func ListLinkedNames(doc string) []string {
	var names []string
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return names
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					names = append(names, string(val))
					break
				}
				if !more {
					break
				}
			}
		}
	}
}
