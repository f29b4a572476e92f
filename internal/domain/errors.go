package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies a discovery failure
type FaultKind string

const (
	// KindConnection means the bus itself could not be reached. It aborts
	// the enclosing call.
	KindConnection FaultKind = "connection"
	// KindAccessDenied means the bus policy refused the introspection call
	KindAccessDenied FaultKind = "access_denied"
	// KindUnsupported means the object does not implement introspection
	KindUnsupported FaultKind = "unsupported"
	// KindIntrospection is any other failed introspection call
	KindIntrospection FaultKind = "introspection"
	// KindParse means the returned schema document could not be decoded
	KindParse FaultKind = "parse"
	// KindValidation means a caller-supplied name or path was rejected
	// before touching the bus
	KindValidation FaultKind = "validation"
	// KindUnauthorized is set on a service that yielded no objects at all
	KindUnauthorized FaultKind = "unauthorized"
	// KindNotFound is used by the presentation layer for empty services
	KindNotFound FaultKind = "not_found"
)

// Fault is the single error type produced by discovery. Faults recorded on
// objects and services are data, not control flow.
type Fault struct {
	Kind    FaultKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Service string    `json:"service,omitempty" yaml:"service,omitempty"`
	Path    string    `json:"path,omitempty" yaml:"path,omitempty"`
	// Detail is the text of Err, kept so encoded records still carry it
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// NewFault builds a fault of the given kind
func NewFault(kind FaultKind, message string, err error) *Fault {
	f := &Fault{Kind: kind, Message: message, Err: err}
	if err != nil {
		f.Detail = err.Error()
	}
	return f
}

// At attaches the service and object path the fault happened at
func (f *Fault) At(service, path string) *Fault {
	f.Service = service
	f.Path = path
	return f
}

func (f *Fault) Error() string {
	if f == nil {
		return "<nil>"
	}
	switch {
	case f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	case f.Detail != "":
		return f.Message + ": " + f.Detail
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// IsKind reports whether err is, or wraps, a fault of the given kind
func IsKind(err error, kind FaultKind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost fault in err, or "" if none
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
