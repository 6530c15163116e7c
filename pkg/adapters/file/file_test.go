package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/formwizard/pkg/ports"
	"github.com/aretw0/formwizard/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
title: Sample
steps:
  - step_key: 1
    title: A
    fields:
      - name: picks
        options: [B, C]
    next_step:
      when: picks
      stepMapper:
        B: 2
        C: 3
  - step_key: 2
    title: B
    next_step: 4
  - step_key: 3
    title: C
    next_step: 4
  - step_key: 4
    title: D
`

const sampleJSON = `{
  "title": "Sample",
  "steps": [
    {"stepKey": 1, "title": "A", "fields": [{"name": "picks"}],
     "nextStep": {"when": "picks", "stepMapper": {"B": "2", "C": 3}}},
    {"stepKey": "2", "title": "B", "nextStep": 4},
    {"stepKey": 3, "title": "C", "nextStep": "4"},
    {"stepKey": 4, "title": "D"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_YAML_Contract(t *testing.T) {
	tests.DefinitionLoaderContractTest(t, NewLoader(writeFile(t, "wizard.yaml", sampleYAML)))
}

func TestLoader_JSON_Contract(t *testing.T) {
	tests.DefinitionLoaderContractTest(t, NewLoader(writeFile(t, "wizard.json", sampleJSON)))
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(ctx)
	assert.ErrorContains(t, err, "failed to read definition")

	_, err = NewLoader(writeFile(t, "bad.json", "{")).Load(ctx)
	assert.ErrorContains(t, err, "invalid JSON")

	_, err = NewLoader(writeFile(t, "wizard.toml", "title = 'x'")).Load(ctx)
	assert.ErrorContains(t, err, "unsupported")

	_, err = NewLoader(writeFile(t, "empty.yml", "")).Load(ctx)
	assert.ErrorContains(t, err, "empty definition")
}

func TestIsDefinitionFile(t *testing.T) {
	assert.True(t, IsDefinitionFile("a/b.YAML"))
	assert.True(t, IsDefinitionFile("wizard.json"))
	assert.False(t, IsDefinitionFile("steps"))
	assert.False(t, IsDefinitionFile("notes.md"))
}

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewStore(t.TempDir()))
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load(context.Background(), "../etc/passwd")
	assert.ErrorContains(t, err, "invalid sessionID")
	assert.Error(t, store.Delete(context.Background(), ""))
}

func TestStore_ListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
