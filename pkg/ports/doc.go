/*
Package ports defines the driven ports (interfaces) of the prompt drafter.

These interfaces decouple the library service and the editor host from concrete
storage backends and host runtimes.

# Key Interfaces

  - LibraryStore: persists saved prompts and wildcard lists (memory, file, Redis, SQLite).
  - PortStore: the host's view of a node's ports, which accepts reconciliation edits.
  - DistributedLocker: serializes writes to the same record across replicas.
  - Watchable: notifies about library changes made outside the process.
*/
package ports
