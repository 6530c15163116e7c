package loam

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/formwizard/internal/dto"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository to ports.DefinitionLoader.
// Every document is one step (keyed by step_key or its file name); a document with
// "kind: wizard" carries the wizard-level settings. Markdown bodies become descriptions.
type Loader struct {
	Repo *loam.TypedRepository[dto.StepMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[dto.StepMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Load lists the repository and assembles the definition. Steps are ordered by key,
// numerically when both keys are numbers.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	def := &domain.Definition{}
	seen := make(map[string]string)
	wizardDoc := ""

	for _, doc := range docs {
		meta := doc.Data
		body := strings.TrimSpace(doc.Content)

		if meta.Kind == dto.KindWizard {
			if wizardDoc != "" {
				return nil, fmt.Errorf("wizard settings defined in both '%s' and '%s'", wizardDoc, doc.ID)
			}
			wizardDoc = doc.ID
			def.Title = meta.Title
			def.Description = cmp.Or(meta.Description, body)
			def.Dynamic = meta.Dynamic
			def.ButtonLabels = meta.ButtonLabels
			def.Layout = meta.Layout
			continue
		}

		step, err := meta.ToDomain(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.ID, err)
		}
		if existing, ok := seen[step.Key]; ok {
			return nil, fmt.Errorf("collision detected: step '%s' is defined in both '%s' and '%s'", step.Key, existing, doc.ID)
		}
		seen[step.Key] = doc.ID

		step.Title = cmp.Or(step.Title, step.Key)
		step.Description = cmp.Or(step.Description, body)
		def.Steps = append(def.Steps, step)
	}

	slices.SortStableFunc(def.Steps, func(a, b domain.StepDefinition) int {
		return compareKeys(a.Key, b.Key)
	})
	return def, nil
}

// ListSteps returns the step keys, in the order Load uses.
func (l *Loader) ListSteps(ctx context.Context) ([]string, error) {
	def, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(def.Steps))
	for i, s := range def.Steps {
		keys[i] = s.Key
	}
	return keys, nil
}

func compareKeys(a, b string) int {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
