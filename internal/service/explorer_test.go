package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbusexplorer/internal/adapter/adaptertest"
	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
)

func newTestExplorer(bus *adaptertest.FakeBus) *Explorer {
	return NewExplorer(bus.Dialer(), codec.NewIntrospectionParser(nil), DefaultTimeouts())
}

func exampleBus() *adaptertest.FakeBus {
	bus := adaptertest.NewFakeBus().
		AddObject("org.other.Bar", "/", adaptertest.Node(pingIface)).
		AddObject("com.example.Foo", "/", adaptertest.Node("", "a")).
		AddObject("com.example.Foo", "/a", adaptertest.Node(pingIface, "x", "y")).
		AddObject("com.example.Foo", "/a/x", adaptertest.Node(pingIface)).
		AddObject("com.example.Foo", "/a/y", adaptertest.Node(pingIface)).
		AddObject("com.example.Alpha", "/", adaptertest.Node(pingIface))
	bus.Names = append(bus.Names, ":1.12", "com.example.Foo")
	bus.Owners["com.example.Foo"] = ":1.12"
	return bus
}

func TestListServiceNames(t *testing.T) {
	bus := exampleBus()

	names, err := newTestExplorer(bus).ListServiceNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Alpha", "com.example.Foo", "org.other.Bar"}, names)
	assert.Equal(t, 1, bus.Dials())
	assert.Equal(t, 1, bus.Closed())
}

func TestDiscoverAllFilter(t *testing.T) {
	bus := exampleBus()

	services, err := newTestExplorer(bus).DiscoverAll(context.Background(), "example")
	require.NoError(t, err)

	require.Len(t, services, 2)
	assert.Equal(t, "com.example.Alpha", services[0].Name)
	assert.Equal(t, "com.example.Foo", services[1].Name)
	assert.Equal(t, ":1.12", services[1].Owner)
	assert.Empty(t, services[0].Owner)
	assert.ElementsMatch(t, []string{"/", "/a", "/a/x", "/a/y"}, services[1].Paths())
	assert.Zero(t, bus.IntrospectCount("org.other.Bar", "/"))
	assert.Equal(t, 1, bus.Closed())
}

func TestDiscoverAllWithoutFilter(t *testing.T) {
	services, err := newTestExplorer(exampleBus()).DiscoverAll(context.Background(), "")
	require.NoError(t, err)

	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	assert.Equal(t, []string{"com.example.Alpha", "com.example.Foo", "org.other.Bar"}, names)
}

func TestDiscoverAllConfinesServiceFaults(t *testing.T) {
	bus := exampleBus().FailObject("com.example.Locked", "/", adaptertest.ErrAccessDenied)

	services, err := newTestExplorer(bus).DiscoverAll(context.Background(), "com.example")
	require.NoError(t, err)
	require.Len(t, services, 3)

	locked := services[2]
	assert.Equal(t, "com.example.Locked", locked.Name)
	require.Len(t, locked.Objects, 1)
	assert.Equal(t, domain.KindAccessDenied, locked.Objects[0].Error.Kind)
	assert.Empty(t, services[1].FailedObjects())
}

func TestDiscoverAllListFailure(t *testing.T) {
	bus := exampleBus()
	bus.ListErr = adaptertest.ErrBusDown

	events := NewEventBus()
	ch := make(chan Event, 4)
	events.Subscribe(ch)

	explorer := newTestExplorer(bus)
	explorer.SetEventPublisher(events)

	services, err := explorer.DiscoverAll(context.Background(), "example")
	assert.Nil(t, services)
	assert.True(t, domain.IsKind(err, domain.KindConnection))
	assert.Equal(t, 1, bus.Closed())

	require.Len(t, ch, 1)
	event := <-ch
	assert.Equal(t, EventDiscoveryFailed, event.Type)
	payload := event.Payload.(map[string]interface{})
	assert.Equal(t, "example", payload["filter"])
	assert.Contains(t, payload["error"], "no such file or directory")
}

func TestDiscoverAllDialFailure(t *testing.T) {
	bus := exampleBus()
	bus.DialErr = adaptertest.ErrBusDown

	_, err := newTestExplorer(bus).DiscoverAll(context.Background(), "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConnection))
	assert.ErrorIs(t, err, adaptertest.ErrBusDown)
	assert.Contains(t, err.Error(), "D-Bus connection failed")
}

func TestDiscoverAllPublishesEvents(t *testing.T) {
	events := NewEventBus()
	ch := make(chan Event, 16)
	events.Subscribe(ch)

	explorer := newTestExplorer(exampleBus())
	explorer.SetEventPublisher(events)

	_, err := explorer.DiscoverAll(context.Background(), "example")
	require.NoError(t, err)
	close(ch)

	var types []EventType
	for ev := range ch {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{
		EventDiscoveryStarted,
		EventServiceDiscovered,
		EventServiceDiscovered,
		EventDiscoveryComplete,
	}, types)
}

func TestDiscoverOne(t *testing.T) {
	bus := exampleBus()

	record, err := newTestExplorer(bus).DiscoverOne(context.Background(), "com.example.Foo")
	require.NoError(t, err)

	assert.Equal(t, "com.example.Foo", record.Name)
	assert.Equal(t, ":1.12", record.Owner)
	assert.Len(t, record.SortedObjects(), 4)
	assert.Equal(t, 1, bus.Closed())
}

func TestDiscoverOneUnknownOwner(t *testing.T) {
	record, err := newTestExplorer(exampleBus()).DiscoverOne(context.Background(), "org.other.Bar")
	require.NoError(t, err)
	assert.Empty(t, record.Owner)
	assert.Len(t, record.Objects, 1)
}

func TestDiscoverOneRejectsInvalidName(t *testing.T) {
	bus := exampleBus()

	for _, name := range []string{"", "com.example.Foo;rm", "com example"} {
		_, err := newTestExplorer(bus).DiscoverOne(context.Background(), name)
		assert.True(t, domain.IsKind(err, domain.KindValidation), name)
	}
	assert.Zero(t, bus.Dials())
}

func TestDescribeObject(t *testing.T) {
	view, err := newTestExplorer(exampleBus()).DescribeObject(context.Background(), "com.example.Foo", "/a")
	require.NoError(t, err)

	assert.Equal(t, "com.example.Foo", view.Service)
	assert.Equal(t, ":1.12", view.Owner)
	assert.Equal(t, "/a", view.Object.Path)
	assert.False(t, view.Object.Failed())

	paths := make([]string, 0, len(view.Children))
	for _, child := range view.Children {
		paths = append(paths, child.Path)
	}
	assert.Equal(t, []string{"/a/x", "/a/y"}, paths)
}

func TestDescribeObjectLeaf(t *testing.T) {
	view, err := newTestExplorer(exampleBus()).DescribeObject(context.Background(), "com.example.Foo", "/a/x")
	require.NoError(t, err)
	assert.NotNil(t, view.Children)
	assert.Empty(t, view.Children)
}

func TestDescribeObjectRejectsInvalidPath(t *testing.T) {
	bus := exampleBus()

	_, err := newTestExplorer(bus).DescribeObject(context.Background(), "com.example.Foo", "relative/path")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Zero(t, bus.Dials())
}
