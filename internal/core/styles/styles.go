// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style

	// Text styles.
	TextForegroundStyle     lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextErrorStyle          lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextSuccessStyle        lipgloss.Style

	// Modal styles.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	// Status letters and diff line styles.
	StatusAddedStyle      lipgloss.Style
	StatusModifiedStyle   lipgloss.Style
	StatusDeletedStyle    lipgloss.Style
	StatusRenamedStyle    lipgloss.Style
	StatusUntrackedStyle  lipgloss.Style
	StatusConflictedStyle lipgloss.Style

	DiffAddedStyle   lipgloss.Style
	DiffRemovedStyle lipgloss.Style
	DiffContextStyle lipgloss.Style
	DiffHunkStyle    lipgloss.Style
	DiffGutterStyle  lipgloss.Style

	// Review styles.
	ReviewSelectionStyle lipgloss.Style
	ReviewCursorStyle    lipgloss.Style
	CommentBoxStyle      lipgloss.Style
	CommentResolvedStyle lipgloss.Style
	CommentOrphanStyle   lipgloss.Style

	StatusBarStyle lipgloss.Style
	PaneStyle      lipgloss.Style
	PaneFocusStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TextForegroundStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	TextForegroundBoldStyle = TextForegroundStyle.Bold(true)
	TextPrimaryStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	TextPrimaryBoldStyle = TextPrimaryStyle.Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	StatusAddedStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusModifiedStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusDeletedStyle = lipgloss.NewStyle().Foreground(ColorError)
	StatusRenamedStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	StatusUntrackedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusConflictedStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	DiffAddedStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Background(p.AddedBg)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(ColorError).Background(p.RemovedBg)
	DiffContextStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	DiffHunkStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Faint(true)
	DiffGutterStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ReviewSelectionStyle = lipgloss.NewStyle().Background(ColorSurface)
	ReviewCursorStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	CommentBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)
	CommentResolvedStyle = CommentBoxStyle.BorderForeground(ColorMuted)
	CommentOrphanStyle = CommentBoxStyle.BorderForeground(ColorWarning)

	StatusBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorForeground)
	PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorSurface)
	PaneFocusStyle = PaneStyle.BorderForeground(ColorPrimary)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	if CurrentPalette.Light {
		cfg = glamourstyles.LightStyleConfig
	}

	fg := colorPtr(ColorForeground)
	primary := colorPtr(ColorPrimary)
	secondary := colorPtr(ColorSecondary)
	muted := colorPtr(ColorMuted)

	cfg.Document.Color = fg
	cfg.Document.Margin = nil
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}
