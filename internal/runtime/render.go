package runtime

import (
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/values"
)

// Render computes the view of the active step without transitioning.
// valid is the host form's overall validity and gates navigation links.
func (e *Engine) Render(state *domain.State, valid bool) (domain.View, error) {
	step, err := e.Step(state)
	if err != nil {
		return domain.View{}, err
	}

	view := domain.View{
		SessionID:   state.SessionID,
		Title:       e.title,
		Description: e.desc,
		Status:      state.Status,
		Valid:       valid,
		Layout:      e.layout,
		Step: domain.StepView{
			Key:         step.Key,
			Title:       step.Title,
			Description: step.Description,
			Index:       state.ActiveStepIndex,
			Fields:      step.Fields,
		},
	}

	target, hasNext := step.Next.Resolve(values.Lookup(state.Values))
	view.Buttons = domain.Buttons{
		Terminal:    !hasNext,
		NextStep:    target,
		NextEnabled: valid && state.IsActive(),
		Back:        e.labels.Back,
		BackEnabled: state.ActiveStepIndex > 0 && state.IsActive(),
		Cancel:      e.labels.Cancel,
	}
	if hasNext {
		view.Buttons.Primary = e.labels.Next
	} else {
		view.Buttons.Primary = e.labels.Submit
	}

	view.Nav = renderNav(state, valid)
	return view, nil
}

func renderNav(state *domain.State, valid bool) []domain.NavItem {
	var items []domain.NavItem
	for _, entry := range state.NavSchema {
		item := domain.NavItem{
			Title:    entry.Title,
			Index:    entry.Index,
			Current:  IsCurrent(state, entry),
			Disabled: !Reachable(state, entry, valid),
		}
		if entry.Primary || len(items) == 0 {
			if entry.SubstepOf != "" {
				// a group is titled by its name and lists every member, the leader included
				lead := item
				lead.Current = state.ActiveStepIndex == entry.Index
				item.Title = entry.SubstepOf
				item.Substeps = []domain.NavItem{lead}
			}
			items = append(items, item)
			continue
		}
		item.Current = state.ActiveStepIndex == entry.Index
		parent := &items[len(items)-1]
		parent.Substeps = append(parent.Substeps, item)
	}
	return items
}
