// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

// HelpDialogSection groups related bindings under a title.
type HelpDialogSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpDialog displays the available keyboard shortcuts.
type HelpDialog struct {
	title    string
	intro    string
	sections []HelpDialogSection
}

// NewHelpDialog creates a new help dialog with the given sections.
func NewHelpDialog(title string, sections []HelpDialogSection) *HelpDialog {
	return &HelpDialog{title: title, sections: sections}
}

// WithIntro sets text shown between the title and the bindings.
func (h *HelpDialog) WithIntro(intro string) *HelpDialog {
	h.intro = intro
	return h
}

// View renders the help dialog.
func (h *HelpDialog) View() string {
	var lines []string
	separator := styles.DividerStyle.Render(strings.Repeat("─", 25))

	for i, section := range h.sections {
		if section.Title != "" {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, styles.TextPrimaryStyle.Render(section.Title), separator)
		}

		for _, b := range section.Bindings {
			if !b.Enabled() {
				continue
			}
			hb := b.Help()
			lines = append(lines, formatKeyDesc(hb.Key, hb.Desc))
		}
	}

	parts := []string{styles.ModalTitleStyle.Render(h.title)}
	if h.intro != "" {
		parts = append(parts, styles.TextMutedStyle.Render(h.intro))
	}
	parts = append(parts, "", strings.Join(lines, "\n"), styles.ModalHelpStyle.Render("esc/? close"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Overlay renders the dialog centered in a width x height area.
func (h *HelpDialog) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, h.View())
}

// formatKeyDesc formats a key-description pair with consistent alignment.
func formatKeyDesc(k, desc string) string {
	const keyWidth = 12

	padded := k + strings.Repeat(" ", max(keyWidth-lipgloss.Width(k), 1))
	return styles.TextPrimaryBoldStyle.Render(padded) + styles.TextForegroundStyle.Render(desc)
}
