/*
Package composer implements the generic handler-chain primitive the rest of
the engine is built on.

A Composer holds an ordered list of middleware. Each middleware receives the
invocation context and a continuation; calling the continuation passes
control to the next middleware in the chain, returning without calling it
stops the chain. Registration helpers (Use, Filter, On, Command, Callback)
append entries; the chain itself is static once assembled and is walked
fresh for every update.

The scene engine composes on top of this package: scene entries are ordinary
middleware, and the scenes pipeline is itself mounted as one middleware on
the bot's root composer.
*/
package composer
