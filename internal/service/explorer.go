package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/adapter"
	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
)

// Timeouts bounds every bus round trip
type Timeouts struct {
	// ListNames bounds name enumeration for the names-only listing
	ListNames time.Duration
	// Enumerate bounds name enumeration before a whole-bus discovery
	Enumerate time.Duration
	// Owner bounds GetNameOwner
	Owner time.Duration
	// Introspect bounds a single object introspection
	Introspect time.Duration
}

// DefaultTimeouts returns the deadlines used when nothing is configured
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ListNames:  1 * time.Second,
		Enumerate:  2 * time.Second,
		Owner:      500 * time.Millisecond,
		Introspect: 1 * time.Second,
	}
}

// Explorer is the entry point for discovery. Every call dials its own bus
// connection, walks sequentially, and closes the connection on return.
// Nothing is shared between calls.
type Explorer struct {
	dial     adapter.Dialer
	parser   codec.SchemaParser
	timeouts Timeouts
	events   EventPublisher
}

// NewExplorer creates an explorer
func NewExplorer(dial adapter.Dialer, parser codec.SchemaParser, timeouts Timeouts) *Explorer {
	return &Explorer{
		dial:     dial,
		parser:   parser,
		timeouts: timeouts,
	}
}

// SetEventPublisher sets the publisher for discovery progress events
func (e *Explorer) SetEventPublisher(pub EventPublisher) {
	e.events = pub
}

// session bundles the components bound to one bus connection
type session struct {
	bus      adapter.Transport
	registry *NameRegistry
	walker   *Walker
}

func (e *Explorer) open(ctx context.Context) (*session, error) {
	bus, err := e.dial(ctx)
	if err != nil {
		return nil, domain.NewFault(domain.KindConnection, "D-Bus connection failed", err)
	}
	return &session{
		bus:      bus,
		registry: NewNameRegistry(bus, e.timeouts.Owner),
		walker:   NewWalker(NewFetcher(bus, e.timeouts.Introspect), e.parser),
	}, nil
}

func (s *session) close() {
	if err := s.bus.Close(); err != nil {
		logrus.Debugf("failed to close bus connection: %v", err)
	}
}

// ListServiceNames returns the sorted public names on the bus
func (e *Explorer) ListServiceNames(ctx context.Context) ([]string, error) {
	s, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	return s.registry.ListNames(ctx, e.timeouts.ListNames)
}

// DiscoverAll resolves and walks every public name containing filter (all
// names when filter is empty) and returns the records sorted by name. Only failing to
// reach the bus or to list names is an error; faults inside one service
// stay in that service's record.
func (e *Explorer) DiscoverAll(ctx context.Context, filter string) ([]domain.ServiceRecord, error) {
	s, err := e.open(ctx)
	if err != nil {
		e.publishFailure(filter, err)
		return nil, err
	}
	defer s.close()

	names, err := s.registry.ListNames(ctx, e.timeouts.Enumerate)
	if err != nil {
		e.publishFailure(filter, err)
		return nil, err
	}

	if filter != "" {
		names = filterNames(names, filter)
	}

	start := time.Now()
	logrus.Infof("discovering %d services (filter=%q)", len(names), filter)
	e.publish(EventDiscoveryStarted, map[string]interface{}{
		"total":  len(names),
		"filter": filter,
	})

	services := make([]domain.ServiceRecord, 0, len(names))
	for i, name := range names {
		record := s.discover(ctx, name)
		services = append(services, record)

		e.publish(EventServiceDiscovered, map[string]interface{}{
			"name":    name,
			"index":   i + 1,
			"total":   len(names),
			"objects": len(record.Objects),
			"failed":  len(record.FailedObjects()),
		})
	}

	sort.SliceStable(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})

	logrus.Infof("discovered %d services in %s", len(services), time.Since(start).Round(time.Millisecond))
	e.publish(EventDiscoveryComplete, map[string]interface{}{
		"services":    len(services),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return services, nil
}

// DiscoverOne resolves the owner of name and walks its object tree
func (e *Explorer) DiscoverOne(ctx context.Context, name string) (domain.ServiceRecord, error) {
	if err := domain.ValidateServiceName(name); err != nil {
		return domain.ServiceRecord{}, err
	}

	s, err := e.open(ctx)
	if err != nil {
		return domain.ServiceRecord{}, err
	}
	defer s.close()

	return s.discover(ctx, name), nil
}

// DescribeObject introspects a single object and lists the direct children
// found by walking its service
func (e *Explorer) DescribeObject(ctx context.Context, name, path string) (*domain.ObjectView, error) {
	if err := domain.ValidateServiceName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateObjectPath(path); err != nil {
		return nil, err
	}

	s, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	object := s.walker.IntrospectObject(ctx, name, path)
	record := s.discover(ctx, name)

	children := record.ChildrenOf(path)
	if children == nil {
		children = []domain.ObjectRecord{}
	}

	return &domain.ObjectView{
		Service:  name,
		Owner:    record.Owner,
		Object:   object,
		Children: children,
	}, nil
}

func (s *session) discover(ctx context.Context, name string) domain.ServiceRecord {
	owner := s.registry.ResolveOwner(ctx, name)
	record := s.walker.Walk(ctx, name)
	record.Owner = owner
	return record
}

func (e *Explorer) publish(eventType EventType, payload interface{}) {
	if e.events == nil {
		return
	}
	e.events.Publish(Event{Type: eventType, Payload: payload})
}

func (e *Explorer) publishFailure(filter string, err error) {
	e.publish(EventDiscoveryFailed, map[string]interface{}{
		"filter": filter,
		"error":  err.Error(),
	})
}

func filterNames(names []string, filter string) []string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(name, filter) {
			kept = append(kept, name)
		}
	}
	return kept
}
