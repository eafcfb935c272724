// Package parser converts rendered feed content into retrievable passages.
package parser

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	iframeTag    = regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML removes markup from rendered content and returns plain text.
// Script, style, iframe and noscript elements are dropped entirely,
// remaining tags become separators, entities are decoded, and runs of
// whitespace collapse to single spaces.
func StripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, " ")
	content = styleTag.ReplaceAllString(content, " ")
	content = iframeTag.ReplaceAllString(content, " ")
	content = noscriptTag.ReplaceAllString(content, " ")
	content = htmlComments.ReplaceAllString(content, " ")
	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)

	return strings.Join(strings.Fields(content), " ")
}
