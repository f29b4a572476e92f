package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dbusexplorer/internal/adapter/adaptertest"
	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
	"dbusexplorer/internal/service"
)

const (
	base      = "/local/dbus_explorer"
	pingIface = `<interface name="com.example.Foo">
  <annotation name="org.freedesktop.DBus.Description" value="Example &amp; test"/>
  <method name="Ping"><arg name="x" type="s" direction="in"/><arg type="s" direction="out"/></method>
  <property name="Level" type="i" access="read"/>
  <signal name="Changed"><arg name="y" type="i"/></signal>
</interface>`
)

func testBus() *adaptertest.FakeBus {
	bus := adaptertest.NewFakeBus().
		AddObject("com.example.Foo", "/", adaptertest.Node("", "a")).
		AddObject("com.example.Foo", "/a", adaptertest.Node(pingIface, "x", "y")).
		AddObject("com.example.Foo", "/a/x", adaptertest.Node(pingIface, "locked")).
		AddObject("com.example.Foo", "/a/y", adaptertest.Node(`<interface name="org.example.Empty"/>`)).
		FailObject("com.example.Foo", "/a/x/locked", adaptertest.ErrAccessDenied).
		AddObject("org.other.Bar", "/", adaptertest.Node(pingIface))
	bus.Owners["com.example.Foo"] = ":1.12"
	return bus
}

func newTestServer(t *testing.T, bus *adaptertest.FakeBus) http.Handler {
	t.Helper()
	explorer := service.NewExplorer(bus.Dialer(), codec.NewIntrospectionParser(nil), service.DefaultTimeouts())
	h, err := NewExplorerHandler(explorer, base+"/")
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	return Chain(mux, Recover, Logger)
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLandingPage(t *testing.T) {
	srv := newTestServer(t, testBus())

	for _, target := range []string{base + "/app", base + "/app/"} {
		rec := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

		body := rec.Body.String()
		assert.Contains(t, body, "<title>D-Bus Explorer - Home</title>")
		assert.Contains(t, body, `<a href="/local/dbus_explorer/app/service/com.example.Foo">com.example.Foo</a>`)
		assert.Contains(t, body, `<a href="/local/dbus_explorer/app/service/org.other.Bar">org.other.Bar</a>`)
		assert.Contains(t, body, `href="/local/dbus_explorer/app/all"`)
	}
}

func TestAllServicesPage(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/app/all")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Service: com.example.Foo</h2>")
	assert.Contains(t, body, "<h2>Service: org.other.Bar</h2>")
	assert.Contains(t, body, "<h3>Object: /a/x</h3>")
	assert.Contains(t, body, "Access denied - not authorized to introspect this object")
}

func TestServicePage(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/app/service/com.example.Foo")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<strong>Service Owner:</strong> :1.12")
	assert.Contains(t, body, "<strong>/</strong> <em>(navigation only)</em>")
	assert.Contains(t, body, `<a href="/local/dbus_explorer/app/service/com.example.Foo/a">/a</a> <em>(1 interface)</em>`)
	assert.Contains(t, body, "<strong>/a/y</strong> <em>(navigation only)</em>")
	assert.Contains(t, body, "<h2>Objects with Errors</h2>")
	assert.Contains(t, body, "<strong>/a/x/locked</strong>: Access denied")
}

func TestObjectPage(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/app/service/com.example.Foo/a")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>D-Bus Explorer - com.example.Foo /a</title>")
	assert.Contains(t, body, `<a href="/local/dbus_explorer/app">Home</a> / <a href="/local/dbus_explorer/app/service/com.example.Foo">com.example.Foo</a> / a</div>`)
	assert.Contains(t, body, "<h4>Interface: com.example.Foo</h4>")
	assert.Contains(t, body, "<p><em>Example &amp; test</em></p>")
	assert.Contains(t, body, "<strong>Ping(x: s)</strong> &rarr; _: s")
	assert.Contains(t, body, "<strong>Level</strong> i [read]")
	assert.Contains(t, body, "<strong>Changed(y: i)</strong>")
	assert.Contains(t, body, "<h2>Child Objects</h2>")
	assert.Contains(t, body, `href="/local/dbus_explorer/app/service/com.example.Foo/a/x"`)
	assert.Contains(t, body, "<strong>/a/y</strong> <em>(navigation only)</em>")
	assert.Contains(t, body, "D-Bus Type Reference")
}

func TestObjectPageNestedBreadcrumbs(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/app/service/com.example.Foo/a/x")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/local/dbus_explorer/app/service/com.example.Foo/a">a</a> / x</div>`)
	assert.NotContains(t, body, "<h2>Child Objects</h2>", "failed children are not listed")
}

func TestObjectPageRoot(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/app/service/com.example.Foo/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>D-Bus Explorer - com.example.Foo /</title>")
}

func TestPageErrors(t *testing.T) {
	down := testBus()
	down.DialErr = adaptertest.ErrBusDown

	tests := []struct {
		name    string
		bus     *adaptertest.FakeBus
		target  string
		status  int
		message string
	}{
		{"invalid service", testBus(), base + "/app/service/bad%20name", http.StatusBadRequest, "Invalid input provided"},
		{"invalid path", testBus(), base + "/app/service/com.example.Foo/a.b", http.StatusBadRequest, "Invalid input provided"},
		{"unknown object", testBus(), base + "/app/service/com.example.Foo/nope", http.StatusNotFound, "Object not found"},
		{"bus down", down, base + "/app", http.StatusServiceUnavailable, "D-Bus service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.bus), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `href="/local/dbus_explorer/app"`)
		})
	}
}

func TestAPIListServices(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/api/services")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"com.example.Foo", "org.other.Bar"}, names)
}

func TestAPIDiscover(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/api/discover?filter=example")
	require.Equal(t, http.StatusOK, rec.Code)

	var services []domain.ServiceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	require.Len(t, services, 1)
	assert.Equal(t, "com.example.Foo", services[0].Name)
	assert.Len(t, services[0].Objects, 5)
}

func TestAPIGetService(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/api/services/com.example.Foo")
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.ServiceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, ":1.12", record.Owner)
	assert.ElementsMatch(t, []string{"/", "/a", "/a/x", "/a/y", "/a/x/locked"}, record.Paths())

	failed := record.FailedObjects()
	require.Len(t, failed, 1)
	assert.Equal(t, domain.KindAccessDenied, failed[0].Error.Kind)
}

func TestAPIGetServiceKeepsBusErrorText(t *testing.T) {
	bus := testBus().
		FailObject("org.other.Bar", "/", adaptertest.ErrNoReply)

	rec := get(t, newTestServer(t, bus), base+"/api/services/org.other.Bar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Did not receive a reply")

	var record domain.ServiceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	require.Len(t, record.Objects, 1)
	require.NotNil(t, record.Objects[0].Error)
	assert.Equal(t, domain.KindIntrospection, record.Objects[0].Error.Kind)
	assert.Contains(t, record.Objects[0].Error.Detail, "Did not receive a reply")
}

func TestAPIGetObject(t *testing.T) {
	rec := get(t, newTestServer(t, testBus()), base+"/api/services/com.example.Foo/objects/a")
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.ObjectView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "/a", view.Object.Path)
	require.Len(t, view.Children, 2)
	assert.Equal(t, "/a/x", view.Children[0].Path)
	assert.Equal(t, "/a/y", view.Children[1].Path)
}

func TestAPIErrors(t *testing.T) {
	down := testBus()
	down.ListErr = adaptertest.ErrBusDown

	tests := []struct {
		name   string
		bus    *adaptertest.FakeBus
		target string
		status int
		error  string
	}{
		{"invalid service", testBus(), base + "/api/services/bad%20name", http.StatusBadRequest, "Invalid input provided"},
		{"unknown object", testBus(), base + "/api/services/com.example.Foo/objects/nope", http.StatusNotFound, "Object not found"},
		{"list failure", down, base + "/api/services", http.StatusServiceUnavailable, "D-Bus service unavailable"},
		{"bad export format", testBus(), base + "/api/export?format=xml", http.StatusBadRequest, "Invalid input provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.bus), tt.target)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.error, resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestAPIExport(t *testing.T) {
	srv := newTestServer(t, testBus())

	rec := get(t, srv, base+"/api/export?format=yaml&filter=other")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=dbus-services.yaml", rec.Header().Get("Content-Disposition"))

	var doc []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc, 1)
	assert.Equal(t, "org.other.Bar", doc[0]["name"])

	rec = get(t, srv, base+"/api/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=dbus-services.json", rec.Header().Get("Content-Disposition"))
}

func TestInterfaceSummary(t *testing.T) {
	full := domain.InterfaceRecord{Name: "a", Methods: []domain.MethodRecord{{Name: "M"}}}
	empty := domain.InterfaceRecord{Name: "b"}

	assert.Equal(t, "", interfaceSummary(domain.ObjectRecord{}))
	assert.Equal(t, "(1 interface)", interfaceSummary(domain.ObjectRecord{Interfaces: []domain.InterfaceRecord{full}}))
	assert.Equal(t, "(2 interfaces)", interfaceSummary(domain.ObjectRecord{Interfaces: []domain.InterfaceRecord{full, full}}))
	assert.Equal(t, "(1 of 2 interfaces with content)", interfaceSummary(domain.ObjectRecord{Interfaces: []domain.InterfaceRecord{full, empty}}))
	assert.Equal(t, "(1 interface, no content)", interfaceSummary(domain.ObjectRecord{Interfaces: []domain.InterfaceRecord{empty}}))
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "x: s, _: a{sv}", formatArgs([]domain.Argument{{Name: "x", Type: "s"}, {Type: "a{sv}"}}))
	assert.Equal(t, "", formatArgs(nil))
}
