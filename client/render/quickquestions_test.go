package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_ExtractsBlockAndQuestions(t *testing.T) {
	content := "Hi there!\n<QUICK_QUESTIONS>\nHow are you?\nWhat's new?\nTell me more\nAnything else?\n</QUICK_QUESTIONS>"

	display, questions := Parse(content)

	assert.Equal(t, "Hi there!", display)
	assert.Equal(t, []string{"How are you?", "What's new?", "Tell me more", "Anything else?"}, questions)
}

func TestParse_NoBlock(t *testing.T) {
	display, questions := Parse("Just a plain answer.")

	assert.Equal(t, "Just a plain answer.", display)
	assert.Nil(t, questions)
}

func TestParse_Idempotent(t *testing.T) {
	content := "Answer.\n<QUICK_QUESTIONS>\nQ1\nQ2\n</QUICK_QUESTIONS>\ntrailing"

	display1, questions1 := Parse(content)
	display2, questions2 := Parse(display1)

	assert.Equal(t, display1, display2)
	assert.Equal(t, questions1, []string{"Q1", "Q2"})
	assert.Empty(t, questions2, "second pass has nothing left to strip")
}

// Fewer than 4 lines is accepted as a partial result, not discarded.
func TestParse_PartialBlock(t *testing.T) {
	content := "A.\n<QUICK_QUESTIONS>\nOnly one?\n</QUICK_QUESTIONS>"

	display, questions := Parse(content)

	assert.Equal(t, "A.", display)
	assert.Equal(t, []string{"Only one?"}, questions)
}

func TestParse_BlankLinesDropped(t *testing.T) {
	content := "A.\n<QUICK_QUESTIONS>\n\nQ1\n   \nQ2\n\n</QUICK_QUESTIONS>"

	_, questions := Parse(content)

	assert.Equal(t, []string{"Q1", "Q2"}, questions)
}

// An unterminated block is malformed: treated as "no questions", content
// unchanged. Parsing never fails.
func TestParse_MalformedBlock(t *testing.T) {
	content := "A.\n<QUICK_QUESTIONS>\nQ1\nQ2"

	display, questions := Parse(content)

	assert.Equal(t, content, display)
	assert.Nil(t, questions)
}

// Only the first block is stripped; the non-greedy match stops at the first
// closing tag.
func TestParse_FirstBlockOnly(t *testing.T) {
	content := "A.<QUICK_QUESTIONS>\nQ1\n</QUICK_QUESTIONS>B.<QUICK_QUESTIONS>\nQ9\n</QUICK_QUESTIONS>"

	display, questions := Parse(content)

	assert.Equal(t, []string{"Q1"}, questions)
	assert.Contains(t, display, "Q9", "a second block is left for the display text")
}

func TestParse_EmptyContent(t *testing.T) {
	display, questions := Parse("")

	assert.Equal(t, "", display)
	assert.Nil(t, questions)
}
