package diff

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/annotations"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/styles"
	"github.com/colonyops/tinydiff/internal/tui/components"
)

const usage = `tinydiff <path>          review the changes of the repository containing path
tinydiff <old> <new>     diff two files`

// View renders the screen. A panic while rendering is shown as an error
// screen.
func (m Model) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("view panicked")
			out = m.renderFailure(&failure{title: "Internal error", err: fmt.Errorf("%v", r)})
		}
	}()

	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.failure != nil {
		return m.renderFailure(m.failure)
	}

	if m.mode == ModeEmpty || m.showHelp {
		return m.renderHelp()
	}

	if m.confirming {
		return m.confirm.Overlay(m.width, m.height)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderPanes(), m.renderStatusBar())
}

func (m Model) renderPanes() string {
	treeWidth, diffWidth, panelHeight := m.paneSizes()

	diffView := lipgloss.NewStyle().Width(diffWidth).Height(panelHeight).MaxHeight(panelHeight).
		Render(m.viewer.View())
	if m.mode != ModeGit {
		return diffView
	}

	treeView := lipgloss.NewStyle().Width(treeWidth).Height(panelHeight).MaxHeight(panelHeight).
		Render(m.tree.View())

	sepStyle := styles.DividerStyle
	if m.focused == FocusDiffViewer {
		sepStyle = styles.TextPrimaryStyle
	}
	separator := lipgloss.NewStyle().Width(1).Height(panelHeight).
		Render(sepStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", panelHeight), "\n")))

	return lipgloss.JoinHorizontal(lipgloss.Top, treeView, separator, diffView)
}

// renderStatusBar renders the bottom line: location, comment summary or the
// last notice, and key hints.
func (m Model) renderStatusBar() string {
	left := styles.TextPrimaryBoldStyle.Render(m.title())
	if m.loading() {
		left += " " + m.spinner.View()
	}

	var middle string
	switch {
	case m.notice != "":
		middle = styles.TextWarningStyle.Render(m.notice)
	case m.mode == ModeGit:
		middle = styles.TextMutedStyle.Render(annotations.Summarize(m.session.Comments().Comments).String())
	}

	right := m.help.ShortHelpView(m.keys.ShortHelp(m.focused))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right) - 4
	if gap < 0 {
		right = ""
		gap = max(m.width-lipgloss.Width(left)-lipgloss.Width(middle)-4, 0)
	}
	line := " " + left + "  " + middle + strings.Repeat(" ", gap) + right + " "

	return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(line)
}

func (m Model) title() string {
	switch m.mode {
	case ModeGit:
		if m.repo == "" {
			return "tinydiff"
		}
		return filepath.Base(m.repo)
	case ModeFile:
		return fmt.Sprintf("%s ↔ %s", filepath.Base(m.opts.Paths[0]), filepath.Base(m.opts.Paths[1]))
	default:
		return "tinydiff"
	}
}

func (m Model) loading() bool {
	if m.viewer.Loading() {
		return true
	}
	return m.mode == ModeGit && !m.statusLoaded
}

func (m Model) renderHelp() string {
	h := components.NewHelpDialog("tinydiff", m.keys.HelpSections())
	if m.mode == ModeEmpty {
		h = h.WithIntro(usage)
	}
	return h.Overlay(m.width, m.height)
}

func (m Model) renderFailure(f *failure) string {
	items := []components.InfoItem{{Label: "Error", Value: f.err.Error(), Status: components.InfoStatusFail}}

	var gerr *git.Error
	if errors.As(f.err, &gerr) {
		items = []components.InfoItem{{Label: "Kind", Value: string(gerr.Kind), Status: components.InfoStatusFail}}
		if gerr.Path != "" {
			items = append(items, components.InfoItem{Label: "Path", Value: gerr.Path})
		}
		if gerr.Detail != "" {
			items = append(items, components.InfoItem{Label: "Detail", Value: gerr.Detail})
		}
		if gerr.Err != nil {
			items = append(items, components.InfoItem{Label: "Cause", Value: gerr.Err.Error()})
		}
	}

	helpText := "[q] quit"
	if f.retry != nil {
		helpText = "[r] retry  [q] quit"
	}

	d := components.NewInfoDialog(f.title, []components.InfoSection{{Items: items}}, "", helpText, m.width, m.height)
	return d.Overlay()
}
