/*
Package dsl builds wizard definitions in Go instead of YAML or JSON files.

	def, err := dsl.New("Signup").
		Step("1").Title("Account").Required("email", "E-mail").
		Choice("plan", "Plan", "basic", "pro").
		Branch("plan", map[string]string{"basic": "2", "pro": "3"}).
		Step("2").Title("Basic").Substep("billing").Next("4").
		Step("3").Title("Pro").Substep("billing").Next("4").
		Step("4").Title("Review").
		Done().Build()

The result can be passed to formwizard.NewFromDefinition, or wrapped with Loader
wherever a ports.DefinitionLoader is expected.
*/
package dsl
