package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/presentation/tui"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/form"
)

type commandKind int

const (
	cmdContinue commandKind = iota
	cmdBack
	cmdJump
	cmdCancel
)

type command struct {
	kind  commandKind
	index int
}

// SaveFunc persists the session state after each transition.
type SaveFunc func(ctx context.Context, state *domain.State) error

// Prompter drives a session from line-based terminal input.
// Commands: ":back", ":jump N", ":cancel", ":q".
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	printer *tui.Printer
}

// NewPrompter reads from in and prints through printer.
func NewPrompter(in io.Reader, out io.Writer, printer *tui.Printer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, printer: printer}
}

// Run loops until the session is submitted or cancelled, the input ends or ctx is done.
func (p *Prompter) Run(ctx context.Context, sess *formwizard.Session, f *form.Form, save SaveFunc) (*domain.State, error) {
	for {
		if err := ctx.Err(); err != nil {
			return sess.State(), err
		}
		state := sess.State()
		if !state.IsActive() {
			return state, nil
		}

		view, err := sess.View()
		if err != nil {
			return state, err
		}
		if err := p.printer.View(view); err != nil {
			return state, err
		}

		cmd, err := p.fill(view.Step.Fields, f)
		if err != nil {
			return sess.State(), err
		}

		switch cmd.kind {
		case cmdBack:
			_, err = sess.OnBack(ctx)
		case cmdJump:
			_, err = sess.OnNavJump(ctx, cmd.index)
		case cmdCancel:
			err = sess.OnCancel(ctx)
		case cmdContinue:
			if !f.Valid() {
				p.printer.Error(f.Errors())
				continue
			}
			// Values just entered may change the branch.
			view, err = sess.View()
			if err != nil {
				return sess.State(), err
			}
			if view.Buttons.Terminal {
				_, err = sess.OnSubmit(ctx)
			} else {
				_, err = sess.Next(ctx)
			}
		}
		if err != nil {
			p.printer.Error(err)
			continue
		}

		if save != nil {
			if err := save(ctx, sess.State()); err != nil {
				return sess.State(), fmt.Errorf("failed to save session: %w", err)
			}
		}
	}
}

// fill prompts every field of the step. An empty answer keeps the current value.
func (p *Prompter) fill(fields []domain.Field, f *form.Form) (command, error) {
	for i := 0; i < max(len(fields), 1); i++ {
		if len(fields) == 0 {
			fmt.Fprint(p.out, "Press Enter to continue: ")
		} else {
			current, has := f.Get(fields[i].Name)
			p.printer.Field(fields[i], current, has)
		}

		line, err := p.readLine()
		if err != nil {
			return command{}, err
		}
		cmd, ok, err := parseCommand(line)
		switch {
		case errors.Is(err, errQuit):
			return command{}, err
		case err != nil:
			p.printer.Error(err)
			i--
			continue
		case ok:
			return cmd, nil
		}
		if line == "" || len(fields) == 0 {
			continue
		}

		value, err := ParseValue(fields[i], line)
		if err != nil {
			p.printer.Error(err)
			i--
			continue
		}
		if err := f.Set(fields[i].Name, value); err != nil {
			return command{}, err
		}
	}
	return command{kind: cmdContinue}, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseCommand(line string) (command, bool, error) {
	if !strings.HasPrefix(line, ":") {
		return command{}, false, nil
	}
	parts := strings.Fields(line)
	switch parts[0] {
	case ":back", ":b":
		return command{kind: cmdBack}, true, nil
	case ":cancel":
		return command{kind: cmdCancel}, true, nil
	case ":q", ":quit":
		return command{}, true, errQuit
	case ":jump", ":j":
		if len(parts) != 2 {
			return command{}, false, fmt.Errorf("usage: :jump N")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return command{}, false, fmt.Errorf("invalid step index %q", parts[1])
		}
		return command{kind: cmdJump, index: n}, true, nil
	}
	return command{}, false, fmt.Errorf("unknown command %q", parts[0])
}

// ParseValue converts terminal input to the field's declared type.
// List types take comma-separated items.
func ParseValue(field domain.Field, raw string) (any, error) {
	return parseTyped(strings.TrimSpace(field.Type), raw)
}

func parseTyped(typ, raw string) (any, error) {
	if strings.HasPrefix(typ, "[") && strings.HasSuffix(typ, "]") {
		elem := typ[1 : len(typ)-1]
		var out []any
		for _, item := range strings.Split(raw, ",") {
			v, err := parseTyped(elem, strings.TrimSpace(item))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	switch typ {
	case "int", "integer":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case "float", "number":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return n, nil
	case "bool", "boolean":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean (true/false)", raw)
		}
		return b, nil
	}
	return raw, nil
}
