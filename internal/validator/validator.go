package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/schema"
)

// Severity of a Finding. Errors make a definition unusable; warnings only point at dead weight.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem found in a wizard definition.
type Finding struct {
	Severity Severity `json:"severity"`
	Step     string   `json:"step,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Step == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: step %q: %s", f.Severity, f.Step, f.Message)
}

// Inspect crawls the step graph from firstStep (default "1") and reports every problem it finds.
func Inspect(def *domain.Definition, firstStep string) []Finding {
	if firstStep == "" {
		firstStep = domain.DefaultFirstStep
	}
	firstStep = domain.NormalizeKey(firstStep)

	var findings []Finding
	add := func(sev Severity, step, format string, args ...any) {
		findings = append(findings, Finding{Severity: sev, Step: step, Message: fmt.Sprintf(format, args...)})
	}

	steps := make(map[string]domain.StepDefinition, len(def.Steps))
	for i, s := range def.Steps {
		key := domain.NormalizeKey(s.Key)
		if key == "" {
			add(SeverityError, "", "step at position %d has no key", i)
			continue
		}
		if _, dup := steps[key]; dup {
			add(SeverityError, key, "duplicate step key")
			continue
		}
		steps[key] = s
		if _, err := schema.Compile(s.Fields); err != nil {
			add(SeverityError, key, "invalid fields: %v", err)
		}
	}

	if _, ok := steps[firstStep]; !ok {
		add(SeverityError, "", "first step %q is missing", firstStep)
		return findings
	}

	// 1. Crawl
	visited := map[string]bool{}
	queue := []string{firstStep}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		step := steps[current]
		targets := step.Next.Targets()
		slices.Sort(targets)
		for _, target := range targets {
			target = domain.NormalizeKey(target)
			if _, ok := steps[target]; !ok {
				if step.Next.IsConditional() {
					add(SeverityError, current, "branch on %q targets missing step %q", step.Next.When, target)
				} else {
					add(SeverityError, current, "next step %q is missing", target)
				}
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, s := range def.Steps {
		key := domain.NormalizeKey(s.Key)
		if key != "" && !visited[key] {
			add(SeverityWarning, key, "unreachable from %q", firstStep)
		}
	}

	// 2. Static chain
	dynamic := def.Dynamic
	for _, s := range steps {
		dynamic = dynamic || s.Next.IsConditional()
	}
	if !dynamic {
		findings = append(findings, inspectChain(steps, firstStep)...)
	}

	return findings
}

// inspectChain follows a fixed chain and reports loops and groups that are split apart.
func inspectChain(steps map[string]domain.StepDefinition, first string) []Finding {
	var findings []Finding
	seen := map[string]bool{}
	var groups []string

	for key := first; key != ""; {
		if seen[key] {
			findings = append(findings, Finding{Severity: SeverityError, Step: key, Message: "static chain loops back to this step"})
			break
		}
		seen[key] = true

		step, ok := steps[key]
		if !ok {
			break
		}
		if g := step.SubstepOf; g != "" {
			if len(groups) > 0 && groups[len(groups)-1] != g && slices.Contains(groups, g) {
				findings = append(findings, Finding{Severity: SeverityWarning, Step: key, Message: fmt.Sprintf("group %q is not contiguous in the chain", g)})
			}
		}
		groups = append(groups, step.SubstepOf)
		key = domain.NormalizeKey(step.Next.Target)
	}
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == SeverityError })
}

// ValidateDefinition returns an error listing every error-level finding.
func ValidateDefinition(def *domain.Definition, firstStep string) error {
	var errs []string
	for _, f := range Inspect(def, firstStep) {
		if f.Severity == SeverityError {
			errs = append(errs, f.String())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}
