package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

const (
	infoModalMaxHeight = 30
	infoModalMargin    = 4
	infoModalChrome    = 6 // title + divider + help + spacing
	infoModalMinWidth  = 50
)

// InfoStatus represents the status of an info item.
type InfoStatus int

const (
	InfoStatusNone InfoStatus = iota
	InfoStatusPass
	InfoStatusWarn
	InfoStatusFail
)

// InfoItem is a single labeled row in an info section.
type InfoItem struct {
	Label  string
	Value  string
	Status InfoStatus
}

// InfoSection groups related info items under a section title.
type InfoSection struct {
	Title string
	Items []InfoItem
}

// InfoDialog displays structured, optionally status-annotated information in
// a scrollable modal. The error screen and config warnings use it.
type InfoDialog struct {
	title    string
	sections []InfoSection
	footer   string
	helpText string
	viewport viewport.Model
	width    int
	height   int
}

// NewInfoDialog creates a dialog sized for a width x height screen.
func NewInfoDialog(title string, sections []InfoSection, footer, helpText string, width, height int) *InfoDialog {
	d := &InfoDialog{
		title:    title,
		sections: sections,
		footer:   footer,
		helpText: helpText,
	}
	d.SetSize(width, height)
	return d
}

func (d *InfoDialog) modalSize() (int, int) {
	w := min(max(int(float64(d.width)*0.65), infoModalMinWidth), d.width-infoModalMargin)
	h := min(d.height-infoModalMargin, infoModalMaxHeight)
	return max(w, 10), max(h, infoModalChrome+1)
}

// SetSize resizes the dialog for a new screen size.
func (d *InfoDialog) SetSize(width, height int) {
	d.width, d.height = width, height
	mw, mh := d.modalSize()
	d.viewport = viewport.New(mw-4, mh-infoModalChrome)
	d.viewport.SetContent(d.renderContent(mw))
}

func (d *InfoDialog) renderContent(modalWidth int) string {
	separator := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	var lines []string

	for i, section := range d.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if section.Title != "" {
			lines = append(lines, styles.TextPrimaryStyle.Render(section.Title), separator)
		}
		for _, item := range section.Items {
			lines = append(lines, formatInfoItem(item, modalWidth-8))
		}
	}

	if d.footer != "" {
		lines = append(lines, "", d.footer)
	}

	return strings.Join(lines, "\n")
}

func formatInfoItem(item InfoItem, width int) string {
	label := styles.TextForegroundBoldStyle.Render(item.Label)
	value := lipgloss.NewStyle().Width(max(width-lipgloss.Width(item.Label)-4, 10)).
		Render(styles.TextMutedStyle.Render(item.Value))

	if icon := statusIcon(item.Status); icon != "" {
		return lipgloss.JoinHorizontal(lipgloss.Top, icon, " ", label, "  ", value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, "  ", value)
}

func statusIcon(s InfoStatus) string {
	switch s {
	case InfoStatusPass:
		return styles.TextSuccessStyle.Render("✔")
	case InfoStatusWarn:
		return styles.TextWarningStyle.Render("●")
	case InfoStatusFail:
		return styles.TextErrorStyle.Render("✘")
	default:
		return ""
	}
}

// ScrollUp scrolls the viewport up.
func (d *InfoDialog) ScrollUp() {
	d.viewport.SetYOffset(d.viewport.YOffset - 1)
}

// ScrollDown scrolls the viewport down.
func (d *InfoDialog) ScrollDown() {
	d.viewport.SetYOffset(d.viewport.YOffset + 1)
}

// View renders the modal box.
func (d *InfoDialog) View() string {
	mw, mh := d.modalSize()

	scrollInfo := ""
	if d.viewport.TotalLineCount() > d.viewport.VisibleLineCount() {
		scrollInfo = styles.TextMutedStyle.Render(
			fmt.Sprintf(" (%.0f%%)", d.viewport.ScrollPercent()*100),
		)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(mw-6, 1)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(d.title)+scrollInfo,
		divider,
		d.viewport.View(),
		styles.ModalHelpStyle.Render(d.helpText),
	)

	return styles.ModalStyle.Width(mw).Height(mh).Render(content)
}

// Overlay renders the dialog centered in the dialog's screen area.
func (d *InfoDialog) Overlay() string {
	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, d.View())
}
