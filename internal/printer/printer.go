// Package printer writes styled, human facing command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tinydiff/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to an output writer.
type Printer struct {
	out io.Writer
}

// New creates a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// WithPrinter stores p on ctx.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored on ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(prefix lipgloss.Style, mark, format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", prefix.Render(mark), fmt.Sprintf(format, args...))
}

// Printf writes an unadorned line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Successf writes a line marked as successful.
func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.TextSuccessStyle, "✔", format, args...)
}

// Success writes a title and a muted detail.
func (p *Printer) Success(title, detail string) {
	p.Successf("%s %s", title, styles.TextMutedStyle.Render(detail))
}

// Infof writes an informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.TextPrimaryStyle, "•", format, args...)
}

// Warnf writes a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.TextWarningStyle, "!", format, args...)
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.TextErrorStyle, "✘", format, args...)
}
