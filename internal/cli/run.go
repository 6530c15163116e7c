package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/formwizard/internal/config"
	"github.com/aretw0/formwizard/internal/presentation/tui"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/form"
	"github.com/google/uuid"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config    *config.Config
	SessionID string
	JSON      bool
	Debug     bool
	Values    string // Raw JSON object merged into the form before the first step
	Fresh     bool
	In        io.Reader
	Out       io.Writer
}

// Execute runs one wizard session in the terminal (or as JSON lines with --json).
// Without a session ID the session is ephemeral; with one it is resumed from and saved to
// the configured store.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	cfg := opts.Config

	var initial map[string]any
	if opts.Values != "" {
		if err := json.Unmarshal([]byte(opts.Values), &initial); err != nil {
			return fmt.Errorf("error parsing --values JSON: %w", err)
		}
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat, opts.Debug)
	if err != nil {
		return err
	}
	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	persistent := opts.SessionID != ""
	if !persistent {
		cfg = &config.Config{Store: config.StoreMemory}
		opts.SessionID = uuid.NewString()
	}
	p, err := NewPersistence(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if opts.Fresh {
		if err := p.Manager.Delete(ctx, opts.SessionID); err != nil {
			logger.Debug("nothing to reset", "session_id", opts.SessionID, "err", err)
		}
	}

	state, err := p.Manager.Start(ctx, opts.SessionID, engine.Start)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	if !state.IsActive() {
		return fmt.Errorf("session %q is already %s (use --fresh to restart it)", opts.SessionID, state.Status)
	}

	f := form.New(state.Values)
	if err := f.Merge(initial); err != nil {
		return err
	}
	sess, err := engine.Resume(state, f)
	if err != nil {
		return err
	}

	save := func(ctx context.Context, s *domain.State) error {
		return p.Manager.Save(ctx, opts.SessionID, s)
	}

	if opts.JSON {
		_, err := RunJSON(ctx, opts.In, opts.Out, sess, f, save)
		return handleExecutionError(err)
	}

	printer := tui.NewPrinter(opts.Out)
	if isTerminal(opts.Out) {
		tui.PrintBanner(opts.Out, printer.Profile(), engine.Definition().Title)
	}
	if persistent && len(state.PrevSteps) > 0 {
		printSystemMessage(opts.Out, "Resuming session '%s' at step '%s'.", opts.SessionID, state.ActiveStep)
	}

	final, err := NewPrompter(opts.In, opts.Out, printer).Run(ctx, sess, f, save)
	if err != nil {
		if isInterrupted(err) {
			printSystemMessage(opts.Out, "Stopped at step '%s'.", final.ActiveStep)
		}
		return handleExecutionError(err)
	}

	switch final.Status {
	case domain.StatusSubmitted:
		printSystemMessage(opts.Out, "Submitted.")
		out, err := json.MarshalIndent(final.Result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(opts.Out, string(out))
	case domain.StatusCancelled:
		printSystemMessage(opts.Out, "Cancelled at step '%s'.", final.ActiveStep)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
