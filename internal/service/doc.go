// Package service implements bus discovery for the explorer.
//
// Explorer is the entry point. Each call dials its own connection through an
// adapter.Dialer and then drives three components bound to that connection:
//
//   - NameRegistry lists public bus names and resolves their owners
//   - Fetcher issues Introspect calls and classifies failed replies
//   - Walker traverses the object tree of one service from "/"
//
// Faults of single objects are recorded on the object and never abort a walk.
// Progress is published on an EventBus for Server-Sent Events clients.
package service
