package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/form"
	"github.com/aretw0/formwizard/pkg/schema"
)

// Command is one JSON line of input in --json mode.
// Action is one of set (default), next, back, jump, submit, cancel.
// Values are merged into the form before the action runs.
type Command struct {
	Action string         `json:"action,omitempty"`
	Values map[string]any `json:"values,omitempty"`
	Index  int            `json:"index,omitempty"`
}

// Response is one JSON line of output in --json mode.
type Response struct {
	View   *domain.View   `json:"view,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Fields []string       `json:"invalid_fields,omitempty"`
}

// RunJSON drives a session from JSON lines, writing one Response per input line.
// The first Response describes the initial view.
func RunJSON(ctx context.Context, in io.Reader, out io.Writer, sess *formwizard.Session, f *form.Form, save SaveFunc) (*domain.State, error) {
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)

	if err := enc.Encode(respond(sess, nil)); err != nil {
		return sess.State(), err
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sess.State(), err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var cmd Command
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&cmd); err != nil {
			if err := enc.Encode(Response{Error: fmt.Sprintf("invalid command: %v", err)}); err != nil {
				return sess.State(), err
			}
			continue
		}

		err := apply(ctx, sess, f, cmd)
		if err == nil && save != nil && cmd.Action != "" && cmd.Action != "set" {
			err = save(ctx, sess.State())
		}
		if err := enc.Encode(respond(sess, err)); err != nil {
			return sess.State(), err
		}
		if !sess.State().IsActive() {
			break
		}
	}
	return sess.State(), scanner.Err()
}

func apply(ctx context.Context, sess *formwizard.Session, f *form.Form, cmd Command) error {
	if len(cmd.Values) > 0 {
		if err := f.Merge(cmd.Values); err != nil {
			return err
		}
	}

	var err error
	switch cmd.Action {
	case "", "set":
	case "next", "submit":
		if verr := f.Errors(); verr != nil {
			return verr
		}
		if cmd.Action == "next" {
			_, err = sess.Next(ctx)
		} else {
			_, err = sess.OnSubmit(ctx)
		}
	case "back":
		_, err = sess.OnBack(ctx)
	case "jump":
		_, err = sess.OnNavJump(ctx, cmd.Index)
	case "cancel":
		err = sess.OnCancel(ctx)
	default:
		err = fmt.Errorf("unknown action %q", cmd.Action)
	}
	return err
}

func respond(sess *formwizard.Session, err error) Response {
	var resp Response
	state := sess.State()
	if state.Status == domain.StatusSubmitted {
		resp.Result = state.Result
	} else if view, verr := sess.View(); verr == nil {
		resp.View = &view
	}
	if err != nil {
		resp.Error = err.Error()
		for _, ve := range schema.ValidationErrors(err) {
			resp.Fields = append(resp.Fields, ve.Field)
		}
	}
	return resp
}
