/*
Package domain contains the core domain models for the grammY engine.

It defines the entities shared by every other package: the inbound Update,
the persisted Session with its scene trace, and the lifecycle events emitted
during traversal. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Update: One inbound event, scoped to a conversation key.
  - Frame / Stack: The recorded control-flow trace of a suspended scene.
  - SceneState: The active scene identifier plus its stack.
  - Session: The per-key record threaded through the state store.
  - LifecycleHooks: Observability callbacks fired as the engine walks a tree.
*/
package domain
