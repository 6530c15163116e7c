package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/config"
	"github.com/aretw0/formwizard/internal/logging"
	"github.com/aretw0/formwizard/internal/presentation/tui"
	"github.com/aretw0/formwizard/pkg/adapters/file"
	"github.com/aretw0/formwizard/pkg/adapters/memory"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/form"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupPath = "../../testdata/signup.yaml"

func newSession(t *testing.T) (*formwizard.Session, *form.Form) {
	t.Helper()
	eng, err := formwizard.New(signupPath)
	require.NoError(t, err)
	f := form.New(nil)
	sess, err := eng.NewSession(context.Background(), "s1", f)
	require.NoError(t, err)
	return sess, f
}

func plainPrinter(w *bytes.Buffer) *tui.Printer {
	return tui.NewPrinter(w,
		tui.WithProfile(termenv.Ascii),
		tui.WithMarkdown(func(s string) (string, error) { return s, nil }),
	)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		typ  string
		raw  string
		want any
		err  bool
	}{
		{"", "hello", "hello", false},
		{"int", "42", 42, false},
		{"int", "4.2", nil, true},
		{"float", "4.5", 4.5, false},
		{"bool", "true", true, false},
		{"bool", "yes", nil, true},
		{"[int]", "1, 2", []any{1, 2}, false},
	}
	for _, tt := range tests {
		got, err := ParseValue(domain.Field{Name: "x", Type: tt.typ}, tt.raw)
		if tt.err {
			assert.Error(t, err, "%s %q", tt.typ, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, ok, err := parseCommand(":jump 2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, command{kind: cmdJump, index: 2}, cmd)

	_, ok, err = parseCommand("plain")
	assert.False(t, ok)
	assert.NoError(t, err)

	_, _, err = parseCommand(":q")
	assert.ErrorIs(t, err, errQuit)

	_, _, err = parseCommand(":jump x")
	assert.Error(t, err)
	_, _, err = parseCommand(":nope")
	assert.Error(t, err)
}

func TestPrompter_Run(t *testing.T) {
	sess, f := newSession(t)
	input := strings.Join([]string{
		"",                // email left empty: required
		"",                // plan keeps its default
		"bob@example.com", // retry email
		"pro",             // plan
		"ACME",            // company.name
		"ten",             // company.seats: not an int
		"10",              // company.seats
		"",                // review has no fields
	}, "\n") + "\n"

	var out bytes.Buffer
	var saved int
	save := func(context.Context, *domain.State) error { saved++; return nil }

	final, err := NewPrompter(strings.NewReader(input), &out, plainPrinter(&out)).Run(context.Background(), sess, f, save)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSubmitted, final.Status)
	assert.Equal(t, map[string]any{
		"email":   "bob@example.com",
		"plan":    "pro",
		"company": map[string]any{"name": "ACME", "seats": 10},
	}, final.Result)
	assert.Equal(t, 3, saved)
	assert.Contains(t, out.String(), `field "email": required`)
	assert.Contains(t, out.String(), `"ten" is not an integer`)
}

func TestPrompter_Commands(t *testing.T) {
	sess, f := newSession(t)
	input := "a@b.c\nbasic\n:back\n:cancel\n"

	var out bytes.Buffer
	final, err := NewPrompter(strings.NewReader(input), &out, plainPrinter(&out)).Run(context.Background(), sess, f, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, final.Status)
	assert.Equal(t, "1", final.ActiveStep)
}

func TestPrompter_EOF(t *testing.T) {
	sess, f := newSession(t)
	var out bytes.Buffer
	_, err := NewPrompter(strings.NewReader("a@b.c\n"), &out, plainPrinter(&out)).Run(context.Background(), sess, f, nil)
	assert.True(t, isInterrupted(err))
}

func TestRunJSON(t *testing.T) {
	sess, f := newSession(t)
	input := strings.Join([]string{
		`{"action":"next"}`,
		`{"values":{"email":"bob@example.com","plan":"basic"}}`,
		`{"action":"next"}`,
		`not json`,
		`{"action":"next","values":{"name":"Bob"}}`,
		`{"action":"submit"}`,
	}, "\n")

	var out bytes.Buffer
	final, err := RunJSON(context.Background(), strings.NewReader(input), &out, sess, f, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, final.Status)

	var responses []Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r Response
		require.NoError(t, dec.Decode(&r))
		responses = append(responses, r)
	}
	require.Len(t, responses, 7)
	assert.Equal(t, "1", responses[0].View.Step.Key)
	assert.Equal(t, []string{"email"}, responses[1].Fields)
	assert.Equal(t, "2", responses[3].View.Step.Key)
	assert.Contains(t, responses[4].Error, "invalid command")
	assert.Equal(t, "4", responses[5].View.Step.Key)
	assert.Equal(t, "Bob", responses[6].Result["name"])
}

func TestExecute_PersistentSession(t *testing.T) {
	cfg := &config.Config{
		Definition: signupPath,
		Store:      config.StoreFile,
		SessionDir: filepath.Join(t.TempDir(), "sessions"),
		LogLevel:   "off",
		FirstStep:  "1",
	}
	ctx := context.Background()

	// First run stops after the first step.
	var out bytes.Buffer
	err := Execute(ctx, RunOptions{Config: cfg, SessionID: "cli", In: strings.NewReader("a@b.c\nbasic\n"), Out: &out})
	require.NoError(t, err)

	p, err := NewPersistence(cfg, logging.NewNop())
	require.NoError(t, err)
	state, err := p.Store.Load(ctx, "cli")
	require.NoError(t, err)
	assert.Equal(t, "2", state.ActiveStep)

	// Second run resumes on step 2.
	out.Reset()
	err = Execute(ctx, RunOptions{Config: cfg, SessionID: "cli", In: strings.NewReader("Bob\n\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Resuming session 'cli' at step '2'")
	assert.Contains(t, out.String(), `"name": "Bob"`)

	var listing bytes.Buffer
	require.NoError(t, ListSessions(ctx, p.Store, &listing))
	assert.Contains(t, listing.String(), "submitted")

	err = Execute(ctx, RunOptions{Config: cfg, SessionID: "cli", In: strings.NewReader(""), Out: &out})
	assert.ErrorContains(t, err, "already submitted")
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a", "1")))

	var out bytes.Buffer
	require.NoError(t, InspectSession(ctx, store, "a", &out))
	assert.Contains(t, out.String(), `"active_step": "1"`)

	out.Reset()
	require.NoError(t, RemoveSession(ctx, store, "a", &out))
	assert.Contains(t, out.String(), `"a" deleted`)

	out.Reset()
	require.NoError(t, ListSessions(ctx, store, &out))
	assert.Contains(t, out.String(), "No active sessions")

	assert.ErrorIs(t, InspectSession(ctx, store, "a", &out), domain.ErrSessionNotFound)
}

func TestNewPersistence_SealedStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	cfg := &config.Config{
		Store:         config.StoreFile,
		SessionDir:    dir,
		EncryptionKey: strings.Repeat("ab", 32),
		MaskFields:    []string{"^email$"},
	}
	ctx := context.Background()

	p, err := NewPersistence(cfg, logging.NewNop())
	require.NoError(t, err)
	state := domain.NewState("s", "1")
	state.Values["email"] = "a@b.c"
	state.Values["plan"] = "pro"
	require.NoError(t, p.Manager.Save(ctx, "s", state))

	raw, err := file.NewStore(dir).Load(ctx, "s")
	require.NoError(t, err)
	assert.NotContains(t, raw.Values, "plan")
	assert.Contains(t, raw.Values, "__encrypted__")

	loaded, err := p.Store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Values["email"])
	assert.Equal(t, "pro", loaded.Values["plan"])

	cfg.EncryptionKey = "short"
	_, err = NewPersistence(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "32 bytes")
}
