package formwizard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/pkg/dsl"
	"github.com/aretw0/formwizard/pkg/form"
)

// ExampleNew_memory builds a branching wizard in code and walks one path through it.
func ExampleNew_memory() {
	// 1. Define the wizard with the builder.
	loader, err := dsl.New("Pizza").
		Step("1").Title("Size").Choice("size", "Size", "small", "large").Next("2").
		Step("2").Title("Crust").Choice("crust", "Crust", "thin", "deep").
		Branch("crust", map[string]string{"thin": "3", "deep": "4"}).
		Step("3").Title("Toppings").Text("toppings", "Toppings").Next("5").
		Step("4").Title("Cheese").Text("cheese", "Cheese").Next("5").
		Step("5").Title("Confirm").
		Done().Loader()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Path is ignored when a loader is given.
	engine, err := formwizard.New("", formwizard.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	f := form.New(nil)
	sess, err := engine.NewSession(ctx, "example", f)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Fill and advance.
	_ = f.Set("size", "large")
	_, _ = sess.Next(ctx)
	_ = f.Set("crust", "deep")
	_, _ = sess.Next(ctx)
	_ = f.Set("cheese", "mozzarella")
	_ = f.Set("toppings", "never shown")
	state, _ := sess.Next(ctx)

	view, _ := sess.View()
	fmt.Println("Current step:", state.ActiveStep, view.Step.Title)
	fmt.Println("Primary button:", view.Buttons.Primary)

	result, err := sess.OnSubmit(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result)
	// Output:
	// Current step: 5 Confirm
	// Primary button: Submit
	// map[cheese:mozzarella crust:deep size:large]
}

// ExampleEngine_JumpTo shows how an invalid form limits navigation links.
func ExampleEngine_JumpTo() {
	def, err := dsl.New("Chain").
		Step("1").Title("One").Next("2").
		Step("2").Title("Two").Next("3").
		Step("3").Title("Three").
		Done().Build()
	if err != nil {
		log.Fatal(err)
	}
	engine, err := formwizard.NewFromDefinition(def)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := engine.Start(ctx, "example")
	state, _ = engine.Next(ctx, state, nil, nil)
	state, _ = engine.Next(ctx, state, nil, nil)

	// Jumping back while the form is invalid drops the links beyond the next step.
	state, _ = engine.JumpTo(ctx, state, 0, false)
	fmt.Println("Active:", state.ActiveStep, "Max:", state.MaxStepIndex)

	// Once the form is valid again, links are enabled up to MaxStepIndex.
	for _, entry := range state.NavSchema {
		fmt.Println(entry.Title, engine.Reachable(state, entry, true))
	}
	// Output:
	// Active: 1 Max: 1
	// One true
	// Two true
	// Three false
}
