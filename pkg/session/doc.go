/*
Package session orchestrates session access and persistence.

The Manager serializes all work on one conversation key: within a process
through reference-counted mutexes, and across replicas through an optional
distributed locker. Its Middleware loads the session before the handler
chain runs and saves it afterwards, so handlers only ever see a session
they exclusively own.
*/
package session
