package diff

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

const commentFormHeight = 5

// CommentForm is the text input for a new or edited comment. Submission and
// cancellation keys are handled by the owner.
type CommentForm struct {
	input textarea.Model
	title string
	width int
}

// NewCommentForm creates a focused form prefilled with body.
func NewCommentForm(title, body string, width int) (CommentForm, tea.Cmd) {
	ta := textarea.New()
	ta.Placeholder = "Leave a comment (markdown)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(commentFormHeight)
	ta.SetValue(body)

	f := CommentForm{input: ta, title: title}
	f.SetWidth(width)
	cmd := f.input.Focus()
	return f, cmd
}

// SetWidth sets the outer width of the form box.
func (f *CommentForm) SetWidth(width int) {
	f.width = max(width, 20)
	f.input.SetWidth(f.width - 4)
}

// Update forwards input to the textarea.
func (f CommentForm) Update(msg tea.Msg) (CommentForm, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// Value returns the trimmed body.
func (f CommentForm) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// View renders the form box.
func (f CommentForm) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TextPrimaryBoldStyle.Render(f.title),
		f.input.View(),
		styles.TextMutedStyle.Render("ctrl+s save • esc cancel"),
	)
	return styles.CommentBoxStyle.Width(f.width).Render(content)
}
