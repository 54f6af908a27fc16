/*
Package ports defines the driven ports (interfaces) of the engine.

These interfaces decouple the core from external implementations, so the
same pipeline runs against in-memory, Redis or SQLite persistence and
with or without cross-replica locking.

# Key Interfaces

  - StateStore: persists and loads per-key session state, the scene
    trace included.
  - DistributedLocker: coordinates session access across replicas.

RunStateStoreContract verifies a StateStore implementation against the
behavior the engine depends on.
*/
package ports
