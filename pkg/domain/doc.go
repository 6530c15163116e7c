/*
Package domain contains the core domain models of the wizard engine.

It defines the entities of the navigation state machine: step definitions and their
successors, the navigation schema, and the per-session State. The package is kept
pure and free of I/O or persistence concerns.

# Key Entities

  - StepDefinition: one page of the form, owning a subset of fields.
  - NextStep: the successor of a step, either terminal, a fixed key, or a branch on a field value.
  - NavEntry: one item of the navigation schema (primary or grouped sub-step).
  - State: the runtime snapshot of a session (active step, visited steps, max index, schema).
  - View: the render model a host turns into buttons and navigation links.
*/
package domain
