/*
Package formwizard is a navigation engine for multi-step forms.

A wizard is a set of steps, each declaring the fields it shows and the step that
follows it. The successor can be fixed or chosen from the value of an earlier field,
so the path a user takes through the wizard is only known while they walk it.
The engine tracks that path, the navigation sidebar, back/jump links and the fields
each visited step registered, and on submit reduces the entered values to the fields
of the steps that were actually visited.

# Concept

The engine never holds a form. Every transition takes a *domain.State and returns a
new one; values, registered fields and validity come from the caller (the "Host").
This keeps the engine embeddable in a CLI, an HTTP server or an MCP agent alike.
Session wraps the loop for hosts that keep a live form in memory.

# Navigation modes

A wizard is static when every step has a fixed successor: the whole sidebar is
computed upfront. It is dynamic when it is flagged as such or when any step branches:
the sidebar then grows one entry per advance and is truncated when the user jumps back,
so stale branches disappear.

# Usage

	eng, err := formwizard.New("./signup.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := eng.NewSession(ctx, "session-123", nil)
	if err != nil {
		log.Fatal(err)
	}

	f := sess.Form().(*form.Form)
	_ = f.Set("email", "bob@example.com")
	if _, err := sess.Next(ctx); err != nil {
		log.Fatal(err)
	}

	view, _ := sess.View()
	fmt.Println(view.Step.Title, view.Buttons.Primary)

	result, err := sess.OnSubmit(ctx)

# Definitions

Definitions are loaded from a single YAML/JSON file, a Loam directory with one
Markdown document per step, or built in code with the dsl package.
Step keys are normalized so that 1 and "1" name the same step.
*/
package formwizard
