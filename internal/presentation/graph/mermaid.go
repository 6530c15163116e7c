package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/formwizard/pkg/domain"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// OverlayFromState builds an overlay from a session state.
func OverlayFromState(state *domain.State) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{Visited: state.Visited(), Current: state.ActiveStep}
}

// GenerateMermaid produces a Mermaid flowchart of the step graph.
// It applies semantic styling:
// - First step: ((Circle))
// - Terminal step: ([Stadium])
// - Default: [Rectangle]
// Steps sharing SubstepOf are wrapped in a subgraph. Branch edges are labelled with
// "field = value".
func GenerateMermaid(steps []domain.StepDefinition, firstStep string, overlay *Overlay) string {
	if firstStep == "" {
		firstStep = domain.DefaultFirstStep
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Group order follows the first appearance of each group.
	var groups []string
	members := map[string][]domain.StepDefinition{}
	for _, step := range steps {
		g := step.SubstepOf
		if _, ok := members[g]; !ok {
			groups = append(groups, g)
		}
		members[g] = append(members[g], step)
	}

	for _, g := range groups {
		indent := "    "
		if g != "" {
			fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", "group_"+sanitizeMermaidID(g), escape(g))
			indent = "        "
		}
		for _, step := range members[g] {
			opener, closer := "[", "]"
			switch {
			case domain.NormalizeKey(step.Key) == domain.NormalizeKey(firstStep):
				opener, closer = "((", "))"
			case step.Next.IsTerminal():
				opener, closer = "([", "])"
			}
			label := step.Key
			if step.Title != "" {
				label = fmt.Sprintf("%s. %s", step.Key, step.Title)
			}
			fmt.Fprintf(&sb, "%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(step.Key), opener, escape(label), closer)
		}
		if g != "" {
			sb.WriteString("    end\n")
		}
	}

	for _, step := range steps {
		from := sanitizeMermaidID(step.Key)
		switch step.Next.Kind {
		case domain.NextDirect:
			fmt.Fprintf(&sb, "    %s --> %s\n", from, sanitizeMermaidID(step.Next.Target))
		case domain.NextConditional:
			values := make([]string, 0, len(step.Next.StepMapper))
			for v := range step.Next.StepMapper {
				values = append(values, v)
			}
			slices.Sort(values)
			for _, v := range values {
				cond := escape(fmt.Sprintf("%s = %s", step.Next.When, v))
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, cond, sanitizeMermaidID(step.Next.StepMapper[v]))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, key := range overlay.Visited {
			safeID := sanitizeMermaidID(key)
			if safeID == "" || seen[safeID] || key == overlay.Current {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// Mermaid ids cannot start with a digit-only token in every renderer, so keys get a prefix.
func sanitizeMermaidID(id string) string {
	if id == "" {
		return ""
	}
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "s_" + r.Replace(id)
}
