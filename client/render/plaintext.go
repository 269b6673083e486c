package render

import (
	"regexp"
	"strings"
)

// CodeBlockPlaceholder replaces fenced code blocks in the typing-animation
// projection; the real block appears when the completed markdown is rendered.
const CodeBlockPlaceholder = "[code]"

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*|__(.*?)__`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*|_(.*?)_`)
	inlineCodePattern = regexp.MustCompile("`([^`]*)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
)

// PlainText projects markdown onto the plain text revealed during the typing
// animation: emphasis and heading markers removed, links reduced to their
// text, fenced code blocks collapsed to a placeholder token. The original
// markdown is rendered in full once the reveal completes.
func PlainText(markdown string) string {
	s := fencedCodePattern.ReplaceAllString(markdown, CodeBlockPlaceholder)
	s = linkPattern.ReplaceAllString(s, "$1")
	s = inlineCodePattern.ReplaceAllString(s, "$1")
	s = boldPattern.ReplaceAllString(s, "$1$2")
	s = italicPattern.ReplaceAllString(s, "$1$2")
	s = headingPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
