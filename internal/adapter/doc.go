// Package adapter connects the explorer to a D-Bus message bus.
//
// Transport is the port the discovery code depends on: list names, resolve a
// name owner, and fetch the introspection document of one object. Every call
// is bounded by the context deadline and returns the raw bus error, so
// callers can classify it with ErrorName.
//
// DBusTransport implements Transport with godbus. NewDialer opens a private
// connection to the system bus, the session bus, or an explicit address.
// The adaptertest package provides an in-memory bus for tests.
package adapter
