/*
Package ports defines the driven ports (interfaces) of the wizard engine.

These interfaces decouple the navigation core from external implementations, so the
same engine runs behind a terminal, an HTTP API or an MCP server with any storage backend.

# Key Interfaces

  - DefinitionLoader: loads the wizard definition (YAML/JSON file, Loam repository, memory).
  - StateStore: persists and loads session State.
  - DistributedLocker: coordinates concurrent access to one session across replicas.
  - Form: the value-store collaborator read at every transition.
*/
package ports
