// Package schema validates form values against the fields a step declares.
//
// A field carries an optional type name ("string", "int", "float", "bool" or a
// slice such as "[string]"), a required flag and an optional set of allowed options.
// Fields are addressed by path, so nested values are checked in place:
//
//	s, err := schema.Compile([]domain.Field{
//	    {Name: "name", Type: "string", Required: true},
//	    {Name: "address.city", Type: "string"},
//	    {Name: "plan", Options: []string{"basic", "pro"}},
//	})
//
//	if err := s.Validate(values); err != nil {
//	    for _, e := range schema.ValidationErrors(err) { ... }
//	}
//
// Custom types can be registered with Custom and attached to a Rule directly.
package schema
