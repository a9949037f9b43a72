package diff

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

// markdownRenderer renders comment bodies. Glamour renderers are costly to
// build, so one is kept per wrap width.
// Rendered output is memoized per width and body.
type markdownRenderer struct {
	byWidth map[int]*glamour.TermRenderer
	cache   map[mdKey]string
}

type mdKey struct {
	width int
	body  string
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{
		byWidth: make(map[int]*glamour.TermRenderer),
		cache:   make(map[mdKey]string),
	}
}

// Render renders body wrapped to width. On failure the raw body is returned.
func (r *markdownRenderer) Render(body string, width int) string {
	width = max(width, 10)
	key := mdKey{width: width, body: body}
	if out, ok := r.cache[key]; ok {
		return out
	}

	tr, ok := r.byWidth[width]
	if !ok {
		var err error
		tr, err = glamour.NewTermRenderer(
			glamour.WithStyles(styles.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return body
		}
		r.byWidth[width] = tr
	}

	out, err := tr.Render(body)
	if err != nil {
		return body
	}
	out = strings.Trim(out, "\n")
	r.cache[key] = out
	return out
}

// Reset drops cached renderers, used after a theme change.
func (r *markdownRenderer) Reset() {
	clear(r.byWidth)
	clear(r.cache)
}
