// Package domain defines the discovered model of a D-Bus message bus.
//
// The types here describe what the explorer learned about every service it
// walked: the object paths it reached, and for each object the interfaces,
// methods, properties, and signals decoded from the introspection schema.
//
// # Records
//
// ServiceRecord holds one bus name, its unique owner (if any), and the
// ObjectRecords reached from "/". ObjectRecord holds the decoded interfaces of
// one path, or the Fault explaining why it could not be decoded.
// InterfaceRecord, MethodRecord, PropertyRecord, SignalRecord and Argument
// mirror the introspection document. Type signatures are carried as opaque
// strings.
//
// # Faults
//
// Fault is the only error type discovery produces. Its Kind separates fatal
// connection faults from per-object protocol and parse faults, and from
// validation faults raised before the bus is touched.
//
// # Design Principles
//
// - Records are built once per discovery call and never mutated afterwards
// - No bus, HTTP, or storage dependencies
package domain
