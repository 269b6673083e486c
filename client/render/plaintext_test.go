package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText_StripsEmphasis(t *testing.T) {
	assert.Equal(t, "bold and italic", PlainText("**bold** and *italic*"))
	assert.Equal(t, "also bold", PlainText("__also bold__"))
}

func TestPlainText_InlineCode(t *testing.T) {
	assert.Equal(t, "run go test now", PlainText("run `go test` now"))
}

func TestPlainText_FencedCodeCollapsed(t *testing.T) {
	input := "Before\n```go\nfunc main() {}\n```\nAfter"
	out := PlainText(input)
	assert.Contains(t, out, CodeBlockPlaceholder)
	assert.NotContains(t, out, "func main")
}

func TestPlainText_LinksReducedToText(t *testing.T) {
	assert.Equal(t, "see the docs here", PlainText("see the [docs](https://example.com) here"))
}

func TestPlainText_HeadingsStripped(t *testing.T) {
	assert.Equal(t, "Title\nbody", PlainText("## Title\nbody"))
}

func TestPlainText_PlainContentUnchanged(t *testing.T) {
	assert.Equal(t, "nothing fancy here.", PlainText("nothing fancy here."))
}
