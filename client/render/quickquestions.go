// Package render decides how each message of the active conversation is
// displayed: instantly, or animated character-by-character. It also extracts
// the embedded quick-questions block from assistant responses before display.
package render

import (
	"regexp"
	"strings"
)

// quickQuestionsPattern strips the whole block, delimiters included, with a
// single non-greedy match. The literal tags are the wire contract with the
// server's prompt augmentation.
var quickQuestionsPattern = regexp.MustCompile(`(?s)<QUICK_QUESTIONS>(.*?)</QUICK_QUESTIONS>`)

// Parse splits assistant content into the text to display and the suggested
// follow-up questions. A missing or malformed block is not an error: the
// content comes back unchanged with no questions. Parsing is idempotent --
// the returned display text contains no block to strip on a second pass.
// Blocks with fewer than 4 lines are accepted as partial results.
func Parse(content string) (display string, questions []string) {
	match := quickQuestionsPattern.FindStringSubmatchIndex(content)
	if match == nil {
		return content, nil
	}

	inner := content[match[2]:match[3]]
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}

	display = content[:match[0]] + content[match[1]:]
	return strings.TrimSpace(display), questions
}
