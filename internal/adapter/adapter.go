package adapter

import (
	"context"
)

// BusKind selects which message bus a Dialer connects to
type BusKind string

const (
	// BusSystem is the machine-wide system bus
	BusSystem BusKind = "system"
	// BusSession is the login session bus of the current user
	BusSession BusKind = "session"
	// BusAddress connects to an explicit bus address (e.g. unix:path=...)
	BusAddress BusKind = "address"
)

// BusConfig holds connection settings for a Dialer
type BusConfig struct {
	// Kind selects the bus
	Kind BusKind `json:"kind"`
	// Address is only used with BusAddress
	Address string `json:"address,omitempty"`
}

// Transport is a blocking request/response channel to the message bus.
// Every call is bounded by the deadline of ctx.
type Transport interface {
	// ListNames returns every name currently registered on the bus,
	// including unique connection names
	ListNames(ctx context.Context) ([]string, error)

	// GetNameOwner returns the unique connection name owning a bus name
	GetNameOwner(ctx context.Context, name string) (string, error)

	// Introspect returns the raw introspection document of one object
	Introspect(ctx context.Context, service, path string) (string, error)

	// Close releases the connection
	Close() error
}

// Dialer opens a new Transport. Each discovery request dials its own
// connection and closes it when done.
type Dialer func(ctx context.Context) (Transport, error)
