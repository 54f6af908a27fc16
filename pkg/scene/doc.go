/*
Package scene implements the resumable step engine: multi-step
conversations expressed as static handler trees, suspended between updates
by persisting nothing but a stack of positions.

A Scene is assembled once at start-up through a Builder. Entries are
assigned positions in registration order, so the tree must be rebuilt with
identical builder calls on every process start. Wait entries suspend the
conversation; Call and Branch entries open nested scopes, each worth one
stack frame while open.

The Engine replays a persisted stack against the tree on every update:
recorded positions select which entry to follow at each depth, siblings off
the recorded path are never run, and the innermost frame marks where live
execution takes over against the current update. Handlers steer the
conversation through the Control installed on each invocation's context.

The engine assumes the surrounding transport delivers updates for one
conversation key strictly one at a time; persisted traces are not safe for
concurrent mutation.
*/
package scene
