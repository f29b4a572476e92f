// Package adaptertest provides an in-memory bus for tests.
package adaptertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"dbusexplorer/internal/adapter"
)

// FakeBus is an in-memory adapter.Transport. Objects maps service name to
// object path to the introspection document served for that path.
type FakeBus struct {
	mu sync.Mutex

	Names   []string
	Owners  map[string]string
	Objects map[string]map[string]string
	// Errors maps service name to object path to the error returned
	// instead of a document
	Errors map[string]map[string]error

	ListErr error
	DialErr error

	introspected map[string]int
	listCalls    int
	dials        int
	closed       int
}

// NewFakeBus returns an empty bus
func NewFakeBus() *FakeBus {
	return &FakeBus{
		Owners:       make(map[string]string),
		Objects:      make(map[string]map[string]string),
		Errors:       make(map[string]map[string]error),
		introspected: make(map[string]int),
	}
}

// AddObject registers a document for service at path. The service name is
// added to Names if missing.
func (b *FakeBus) AddObject(service, path, xml string) *FakeBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addName(service)
	if b.Objects[service] == nil {
		b.Objects[service] = make(map[string]string)
	}
	b.Objects[service][path] = xml
	return b
}

// FailObject makes introspection of service at path fail with err
func (b *FakeBus) FailObject(service, path string, err error) *FakeBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addName(service)
	if b.Errors[service] == nil {
		b.Errors[service] = make(map[string]error)
	}
	b.Errors[service][path] = err
	return b
}

func (b *FakeBus) addName(service string) {
	for _, n := range b.Names {
		if n == service {
			return
		}
	}
	b.Names = append(b.Names, service)
}

// Dialer returns an adapter.Dialer handing out this bus
func (b *FakeBus) Dialer() adapter.Dialer {
	return func(ctx context.Context) (adapter.Transport, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.DialErr != nil {
			return nil, b.DialErr
		}
		b.dials++
		return b, nil
	}
}

func (b *FakeBus) ListNames(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]string(nil), b.Names...), nil
}

func (b *FakeBus) GetNameOwner(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	owner, ok := b.Owners[name]
	if !ok {
		return "", dbus.Error{
			Name: adapter.ErrNameNameHasNoOwner,
			Body: []interface{}{fmt.Sprintf("Could not get owner of name '%s': no such name", name)},
		}
	}
	return owner, nil
}

func (b *FakeBus) Introspect(ctx context.Context, service, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.introspected[service+path]++

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := b.Errors[service][path]; ok {
		return "", err
	}
	xml, ok := b.Objects[service][path]
	if !ok {
		return "", dbus.Error{
			Name: adapter.ErrNameUnknownObject,
			Body: []interface{}{fmt.Sprintf("No such object path '%s'", path)},
		}
	}
	return xml, nil
}

func (b *FakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}

// IntrospectCount returns how often service at path was introspected
func (b *FakeBus) IntrospectCount(service, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.introspected[service+path]
}

// Dials returns how many connections were opened
func (b *FakeBus) Dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

// Closed returns how many connections were closed
func (b *FakeBus) Closed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ErrAccessDenied is the reply a bus policy gives to a refused call
var ErrAccessDenied = dbus.Error{
	Name: adapter.ErrNameAccessDenied,
	Body: []interface{}{"Rejected send message"},
}

// ErrUnknownMethod is the reply of an object without introspection support
var ErrUnknownMethod = dbus.Error{
	Name: adapter.ErrNameUnknownMethod,
	Body: []interface{}{"No such method 'Introspect'"},
}

// ErrNoReply is a generic failure
var ErrNoReply = dbus.Error{
	Name: adapter.ErrNameNoReply,
	Body: []interface{}{"Did not receive a reply"},
}

// ErrBusDown stands in for an unreachable bus
var ErrBusDown = errors.New("dial unix /run/dbus/system_bus_socket: connect: no such file or directory")

// Node builds a minimal introspection document advertising the given child
// segments and interfaces
func Node(interfaces string, children ...string) string {
	doc := `<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
 "http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>` + interfaces
	for _, child := range children {
		doc += fmt.Sprintf(`<node name="%s"/>`, child)
	}
	return doc + `</node>`
}
