package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

// ConfirmModal is a yes/no confirmation dialog. No is selected initially.
type ConfirmModal struct {
	title     string
	message   string
	yes       bool
	confirmed bool
	cancelled bool
}

// NewConfirmModal creates a new confirmation modal.
func NewConfirmModal(title, message string) ConfirmModal {
	return ConfirmModal{title: title, message: message}
}

// Update handles input for the confirmation modal.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.confirmed = true
	case "n", "N", "esc", "q":
		m.cancelled = true
	case "left", "right", "h", "l", "tab":
		m.yes = !m.yes
	case "enter":
		if m.yes {
			m.confirmed = true
		} else {
			m.cancelled = true
		}
	}
	return m, nil
}

// View renders the confirmation modal.
func (m ConfirmModal) View() string {
	yes, no := styles.ModalButtonStyle, styles.ModalButtonSelectedStyle
	if m.yes {
		yes, no = no, yes
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		styles.TextForegroundStyle.Render(m.message),
		"",
		buttons,
		styles.ModalHelpStyle.Render("y/n • ←/→ choose • enter confirm"),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the modal centered in a width x height area.
func (m ConfirmModal) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}

// Confirmed returns true if user confirmed.
func (m ConfirmModal) Confirmed() bool {
	return m.confirmed
}

// Cancelled returns true if user cancelled.
func (m ConfirmModal) Cancelled() bool {
	return m.cancelled
}

// Done reports whether the user answered.
func (m ConfirmModal) Done() bool {
	return m.confirmed || m.cancelled
}
