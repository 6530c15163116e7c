package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes wizard views to a terminal.
type Printer struct {
	out      io.Writer
	profile  termenv.Profile
	markdown func(string) (string, error)
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithProfile forces a colour profile (termenv.Ascii disables colours).
func WithProfile(p termenv.Profile) PrinterOption {
	return func(pr *Printer) { pr.profile = p }
}

// WithMarkdown sets the markdown renderer used for descriptions.
func WithMarkdown(render func(string) (string, error)) PrinterOption {
	return func(pr *Printer) { pr.markdown = render }
}

// NewPrinter defaults to the colour profile of the environment and glamour rendering.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{out: w, profile: termenv.EnvColorProfile()}
	for _, opt := range opts {
		opt(p)
	}
	if p.markdown == nil {
		p.markdown = NewRenderer()
	}
	return p
}

// Profile returns the colour profile in use.
func (p *Printer) Profile() termenv.Profile {
	return p.profile
}

// View prints the navigation sidebar, the active step and its buttons.
func (p *Printer) View(view domain.View) error {
	var sb strings.Builder

	p.nav(&sb, view.Nav, "")
	sb.WriteString("\n")

	title := fmt.Sprintf("Step %d: %s", view.Step.Index+1, view.Step.Title)
	sb.WriteString(p.profile.String(title).Bold().Foreground(p.profile.Color("#818cf8")).String())
	sb.WriteString("\n")

	if view.Step.Description != "" {
		rendered, err := p.markdown(view.Step.Description)
		if err != nil {
			return fmt.Errorf("render description: %w", err)
		}
		sb.WriteString(strings.TrimRight(rendered, "\n"))
		sb.WriteString("\n")
	}

	var buttons []string
	if view.Buttons.BackEnabled {
		buttons = append(buttons, ":back")
	}
	primary := view.Buttons.Primary
	if !view.Buttons.NextEnabled {
		primary = p.profile.String(primary + " (fix the form first)").Faint().String()
	}
	buttons = append(buttons, primary, ":jump N", ":cancel")
	sb.WriteString("\n")
	sb.WriteString(p.profile.String("[" + strings.Join(buttons, "] [") + "]").Faint().String())
	sb.WriteString("\n")

	_, err := io.WriteString(p.out, sb.String())
	return err
}

func (p *Printer) nav(sb *strings.Builder, items []domain.NavItem, indent string) {
	for _, item := range items {
		marker := " "
		style := p.profile.String(fmt.Sprintf("%d. %s", item.Index, item.Title))
		switch {
		case item.Current:
			marker = ">"
			style = style.Bold().Foreground(p.profile.Color("#f472b6"))
		case item.Disabled:
			style = style.Faint()
		}
		fmt.Fprintf(sb, "%s%s %s\n", indent, marker, style)

		if len(item.Substeps) > 0 {
			p.nav(sb, item.Substeps, indent+"   ")
		}
	}
}

// Field prints the prompt of one field.
func (p *Printer) Field(f domain.Field, current any, hasCurrent bool) {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	prompt := label
	if f.Required {
		prompt += p.profile.String(" *").Foreground(p.profile.Color("#fb7185")).String()
	}
	if len(f.Options) > 0 {
		prompt += fmt.Sprintf(" (%s)", strings.Join(f.Options, "/"))
	}
	if hasCurrent {
		prompt += p.profile.String(fmt.Sprintf(" [%v]", current)).Faint().String()
	}
	fmt.Fprintf(p.out, "%s: ", prompt)
}

// Error prints an error line.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, p.profile.String("✗ "+err.Error()).Foreground(p.profile.Color("#fb7185")))
}

// Info prints a faint informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.out, p.profile.String(msg).Faint())
}
